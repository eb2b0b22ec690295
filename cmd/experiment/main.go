package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/cheggaaa/pb"
	"github.com/lao-tseu-is-alive/go-swarm-escape/internal/console"
	"github.com/lao-tseu-is-alive/go-swarm-escape/pkg/experiment"
	"github.com/urfave/cli"
)

func main() {
	if err := makeapp().Run(os.Args); err != nil {
		console.Fail(err)
	}
}

func makeapp() *cli.App {
	app := cli.NewApp()
	app.Name = "experiment"
	app.Usage = "repeat swarm escape simulations and average their results"
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "config, c", Value: "experiment.json", Usage: "Experiment file (.json or .toml)"},
		cli.StringFlag{Name: "output, o", Usage: "Override the output directory of the experiment"},
		cli.BoolFlag{Name: "no-progress", Usage: "Do not show the progress bar"},
		cli.StringFlag{Name: "log-level", Value: "error", Usage: "debug, info, warn or error"},
	}
	app.Action = runAction
	return app
}

func runAction(c *cli.Context) error {
	logger, err := console.NewLogger(c.String("log-level"))
	if err != nil {
		return err
	}
	cfg, err := experiment.LoadConfig(c.String("config"))
	if err != nil {
		return err
	}
	if out := c.String("output"); out != "" {
		cfg.OutputDir = out
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts := []experiment.Option{experiment.WithLogger(logger)}
	var bar *pb.ProgressBar
	if !c.Bool("no-progress") {
		bar = pb.StartNew(cfg.Trials())
		opts = append(opts, experiment.WithProgress(func() { bar.Increment() }))
	}
	report, err := experiment.Run(ctx, cfg, opts...)
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		return err
	}

	w := os.Stdout
	console.Title(w, "%s: %d repetitions per config", report.ExperimentName, cfg.NumRepetitions)
	for _, cr := range report.Configs {
		console.Title(w, "%s", cr.Name)
		console.Row(w, "avg agent success", fmt.Sprintf("%.1f%%", 100*cr.AvgAgentSuccess), cr.AvgAgentSuccess >= 0.5)
		console.Row(w, "avg time", fmt.Sprintf("%.2f", cr.AvgTime), true)
		console.Row(w, "avg capture spread", fmt.Sprintf("%.2f", cr.AvgDeltaTime), true)
	}
	return nil
}
