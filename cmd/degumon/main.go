package main

import (
	"context"
	"flag"
	"log"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"

	fx "github.com/robotalks/degu.go/pkg/framework"
	"github.com/robotalks/degu.go/pkg/l1/comm/mqtt"
	transport "github.com/robotalks/degu.go/pkg/transport/mqtt"
)

var (
	mqttURL    = "mqtt://localhost:1883/degu/"
	logFile    string
	logMaxSize = 10
)

func init() {
	if val := os.Getenv("DEGU_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
	flag.StringVar(&logFile, "log-file", logFile, "Write traffic into a rotated file instead of stderr.")
	flag.IntVar(&logMaxSize, "log-max-size", logMaxSize, "Size in megabytes to rotate the log file.")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)
	if logFile != "" {
		out := &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    logMaxSize,
			MaxBackups: 3,
		}
		defer out.Close()
		log.SetOutput(out)
	}

	q, err := transport.NewQueueFromURL(mqttURL)
	if err != nil {
		log.Fatalln(err)
	}
	runner := fx.NewRunner().HandleSignals()
	if err = q.ConnectWait(runner.Context); err != nil {
		log.Fatalln(err)
	}
	defer q.Close()

	q.Sub("#", func(topic string, payload []byte) {
		log.Printf("%s: %s", topic, mqtt.Describe(topic, payload))
	})
	runner.Go(fx.RunnableFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	}))
	runner.Wait()
}
