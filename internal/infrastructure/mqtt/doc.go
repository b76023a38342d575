// Package mqtt provides the broker connection edges use to deliver data.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Edge topic subscriptions, optionally as a shared subscription group
//   - Retained online/offline status with Last Will and Testament
//   - Per-message observation for metrics
//
// # Topics
//
// Edges publish on timedata/edge/{edgeId}/{kind} where kind is one of
// aggregated, resend, raw or current. The service publishes its own
// status on timedata/system/status.
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.Subscribe(mqtt.Topics{}.AllEdgeData(), 1,
//	    func(topic string, payload []byte) error {
//	        edgeID, kind, _ := mqtt.Topics{}.ParseEdgeData(topic)
//	        return handle(edgeID, kind, payload)
//	    })
package mqtt
