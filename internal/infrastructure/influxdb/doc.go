// Package influxdb stores padlink telemetry as time series: pad
// orientation samples and periodic pipeline diagnostics (parsed lines,
// emitted events, queue drops).
//
// The client batches writes per the config.yaml settings (batch_size,
// flush_interval) and never blocks the pipeline it observes; batch
// failures surface asynchronously through SetOnError. All methods are
// safe for concurrent use.
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	client.WriteOrientation(3.5, -1.25)
package influxdb
