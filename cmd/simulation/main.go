package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lao-tseu-is-alive/go-swarm-escape/internal/console"
	"github.com/lao-tseu-is-alive/go-swarm-escape/pkg/simulation"
	"github.com/lao-tseu-is-alive/go-swarm-escape/pkg/trace"
	"github.com/urfave/cli"
)

func main() {
	if err := makeapp().Run(os.Args); err != nil {
		console.Fail(err)
	}
}

func makeapp() *cli.App {
	app := cli.NewApp()
	app.Name = "simulation"
	app.Usage = "run one swarm escape simulation"

	configFlag := cli.StringFlag{Name: "config, c", Value: "config.json", Usage: "Simulation config file (.json or .toml)"}
	app.Commands = []cli.Command{
		{
			Name:    "run",
			Aliases: []string{"r"},
			Usage:   "Run the simulation to the end and print its result",
			Flags: []cli.Flag{
				configFlag,
				cli.StringFlag{Name: "trace", Usage: "Write every summary to this file (.json, .pb.json or .msgpack)"},
				cli.StringFlag{Name: "result", Usage: "Write the final result to this file (.json, .pb.json or .msgpack)"},
				cli.IntFlag{Name: "parallelism", Usage: "Override the movement parallelism of the config"},
				cli.StringFlag{Name: "log-level", Value: "info", Usage: "debug, info, warn or error"},
			},
			Action: runAction,
		},
		{
			Name:  "validate",
			Usage: "Check a config file and exit",
			Flags: []cli.Flag{configFlag},
			Action: func(c *cli.Context) error {
				cfg, err := simulation.LoadConfig(c.String("config"))
				if err != nil {
					return err
				}
				console.Row(os.Stdout, cfg.Name, "valid", true)
				return nil
			},
		},
	}
	return app
}

func runAction(c *cli.Context) error {
	logger, err := console.NewLogger(c.String("log-level"))
	if err != nil {
		return err
	}
	configFile := c.String("config")
	cfg, err := simulation.LoadConfig(configFile)
	if err != nil {
		return err
	}
	if c.IsSet("parallelism") {
		cfg.Parallelism = c.Int("parallelism")
	}
	cfg.SetLogger(logger)

	var tr *trace.Trace
	if c.String("trace") != "" {
		tr = trace.New(cfg.Name, configFile)
	}
	sim := simulation.NewSimulator(cfg, simulation.WithSimulatorLogger(logger))
	for s, err := range sim.Run() {
		if err != nil {
			return err
		}
		if tr != nil {
			tr.Append(s)
		}
	}
	r, _ := sim.LastResult()

	if tr != nil {
		if err := trace.WriteFile(c.String("trace"), tr); err != nil {
			return err
		}
		logger.Infof("trace written to %s", c.String("trace"))
	}
	if path := c.String("result"); path != "" {
		if err := trace.WriteFile(path, trace.NewRunRecord(cfg.Name, configFile, 0, r)); err != nil {
			return err
		}
		logger.Infof("result written to %s", path)
	}

	printResult(cfg.Name, configFile, r)
	return nil
}

func printResult(name, configFile string, r simulation.Result) {
	w := os.Stdout
	console.Title(w, "%s (%s)", name, strings.TrimSuffix(filepath.Base(configFile), filepath.Ext(configFile)))
	console.Row(w, "agents reached target", fmt.Sprintf("%d/%d", r.NumAgentsReachedTarget, r.NumAgents), r.NumAgentsReachedTarget > 0)
	console.Row(w, "success rate", fmt.Sprintf("%.1f%%", 100*r.SuccessRate()), r.SuccessRate() >= 0.5)
	console.Row(w, "ticks", fmt.Sprintf("%d", r.Ticks), true)
	console.Row(w, "total time", fmt.Sprintf("%.2f", r.TotalTime), true)
	if r.NumAgentsReachedTarget > 0 {
		console.Row(w, "first / last capture tick", fmt.Sprintf("%d / %d", r.FirstReachTick, r.LastReachTick), true)
		console.Row(w, "capture spread", fmt.Sprintf("%.2f", r.DeltaTimeTarget), true)
	}
}
