// Package timedata holds the shared data model of the timedata store:
// storage points, sparse historical tables and query resolutions.
//
// Points are transient: they are built per ingested row and handed to the
// async writer. Tables are built per query and ordered by timestamp, then
// by channel address.
package timedata
