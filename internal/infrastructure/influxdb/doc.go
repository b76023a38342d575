// Package influxdb is the storage adapter of the timedata service.
//
// It has three parts sharing one Client:
//   - AsyncWriter queues telemetry points and availability markers and
//     writes them from a fixed worker pool through the blocking write API.
//   - Backend answers history queries with Flux: bucketed means from the
//     average tier, per-bucket last snapshots and last-before lookups from
//     the MAX tier, and the startup bulk load of availability markers.
//   - Client owns the connection and maps retention tiers to buckets.
//
// # Buckets
//
// The average and MAX tiers are two retention policies of one database,
// addressed as "<database>/<rp>" buckets. This works against 2.x servers
// and against 1.8+ through the v2 compatibility API.
//
// # Usage
//
//	client, err := influxdb.Connect(ctx, cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	writer := influxdb.NewAsyncWriter(client, influxdb.WriterConfig{PoolSize: 4, QueueCapacity: 10000})
//	writer.Start(ctx)
//	defer writer.Close()
//
//	backend := influxdb.NewBackend(client, influxdb.BackendConfig{AvgMeasurement: "data"})
//
// # Error Handling
//
// Writes never block the ingest path. A saturated queue returns
// ErrQueueFull; worker failures arrive on AsyncWriter.Errors wrapped in
// ErrWriteFailed. Query failures are returned wrapped in ErrQueryFailed.
package influxdb
