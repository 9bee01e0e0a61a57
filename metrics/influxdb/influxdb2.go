package influxdb

import (
	"context"
	"log/slog"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/rotblauer/catspeak/alert"
	"github.com/rotblauer/catspeak/params"
)

const measurement = "crossing"

// Enabled reports whether an InfluxDB endpoint is configured.
func Enabled() bool {
	return params.INFLUXDB_URL != ""
}

func alertPoint(e alert.Event) *write.Point {
	return influxdb2.NewPointWithMeasurement(measurement).
		SetTime(e.Time).
		AddTag("language", e.Language).
		AddField("threshold", e.Threshold).
		AddField("speed", int(e.Speed)).
		AddField("text", e.Text)
}

func newClient() influxdb2.Client {
	opts := influxdb2.DefaultOptions()
	opts.SetPrecision(time.Second)
	client := influxdb2.NewClientWithOptions(params.INFLUXDB_URL, params.INFLUXDB_TOKEN, opts)
	return client
}

// Run exports every event the dispatcher emits until ctx is done.
// Write errors are logged.
func Run(ctx context.Context, d *alert.Dispatcher) {
	logger := slog.With("d", "influxdb")
	client := newClient()
	writeAPI := client.WriteAPI(params.INFLUXDB_ORG, params.INFLUXDB_BUCKET)
	errorsCh := writeAPI.Errors()
	go func() {
		for e := range errorsCh {
			logger.Warn("Write crossing", "error", e)
		}
	}()

	events := make(chan alert.Event, 16)
	sub := d.Subscribe(events)
	defer sub.Unsubscribe()
	logger.Info("Exporting crossings", "url", params.INFLUXDB_URL, "bucket", params.INFLUXDB_BUCKET)
	for {
		select {
		case <-ctx.Done():
			writeAPI.Flush()
			client.Close()
			return
		case err := <-sub.Err():
			if err != nil {
				logger.Warn("Subscription ended", "error", err)
			}
			writeAPI.Flush()
			client.Close()
			return
		case e := <-events:
			writeAPI.WritePoint(alertPoint(e))
		}
	}
}
