package main

//go-build: CGO_ENABLED=0

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/degu.go/pkg/device"
	fx "github.com/robotalks/degu.go/pkg/framework"
)

var reportInterval time.Duration

func init() {
	device.SetupFlags()
	flag.DurationVar(&reportInterval, "report", reportInterval, "Interval to report status into the shadow, 0 to disable.")
}

type status struct {
	ID      string `json:"id"`
	Uptime  int64  `json:"uptime"`
	Channel uint8  `json:"channel"`
}

func reporter(env *device.Env) func(context.Context) error {
	start := time.Now()
	return func(ctx context.Context) error {
		st := status{
			ID:     env.Config.Registry.Info.Ref.ID,
			Uptime: int64(time.Since(start) / time.Second),
		}
		if snap, err := env.Device.Radio(); err == nil {
			st.Channel = snap.Channel
		}
		doc, err := json.Marshal(&st)
		if err != nil {
			return err
		}
		code, err := env.Device.UpdateShadow(ctx, doc)
		if err != nil {
			return err
		}
		glog.V(1).Infof("status reported: %s", code)
		return nil
	}
}

func main() {
	flag.Parse()
	defer glog.Flush()

	runner := fx.NewRunner().HandleSignals()
	env := device.Default().MustNewEnv(runner.Context)
	defer env.Close()

	runner.Go(env.Runnables()...)
	if reportInterval > 0 {
		runner.Go(fx.NamedRun("report", fx.Periodic(reportInterval, reporter(env))))
	}
	runner.Go(fx.NamedRun("main", fx.RunnableFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})))
	glog.Infof("device %s started, shadow at %s", env.Config.Registry.Info.Ref.ID, env.Config.ShadowURL)
	if err := runner.Wait(); err != nil {
		glog.Flush()
		log.Fatalln(err)
	}
}
