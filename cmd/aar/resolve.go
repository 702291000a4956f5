package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/OCAP2/aar/internal/config"
	"github.com/OCAP2/aar/internal/export"
	"github.com/OCAP2/aar/internal/influx"
	"github.com/OCAP2/aar/internal/parser"
	"github.com/OCAP2/aar/internal/resolver"
	"github.com/OCAP2/aar/internal/stats"
	"github.com/OCAP2/aar/pkg/core"
)

type resolveFlags struct {
	output   string
	noExport bool
	chains   bool
}

func resolveCmd() *cobra.Command {
	var f resolveFlags
	cmd := &cobra.Command{
		Use:   "resolve <debriefing.xml>",
		Short: "Resolve engagement chains and print per-pilot results",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			configDir, _ := cmd.Flags().GetString("config")
			return runResolve(cmd.Context(), cmd.OutOrStdout(), configDir, args[0], f)
		},
	}
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "report directory (overrides output.dir)")
	cmd.Flags().BoolVar(&f.noExport, "no-export", false, "do not write the JSON report")
	cmd.Flags().BoolVar(&f.chains, "chains", false, "list every chain after the summary")
	return cmd
}

func runResolve(ctx context.Context, out io.Writer, configDir, path string, f resolveFlags) (err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := newApp(ctx, configDir)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(context.Background()); cerr != nil && err == nil {
			err = cerr
		}
	}()

	deb, err := parser.NewParser(a.logger).ParseFile(path)
	if err != nil {
		a.logger.Error("Failed to parse debriefing", "path", path, "error", err)
		return err
	}
	a.mission.SetMission(&deb.Mission, filepath.Base(path))
	a.logger.InfoContext(ctx, "Parsed debriefing",
		"events", len(deb.Events), "skipped", deb.Skipped, "pilots", len(deb.Pilots))

	cls, err := a.classifier()
	if err != nil {
		return err
	}
	res, err := resolver.New(resolverOptions(config.GetResolverConfig()), resolver.Dependencies{
		Classifier: cls,
		Logger:     a.logger,
	})
	if err != nil {
		return err
	}
	set, err := res.Resolve(ctx, deb.Events)
	if err != nil {
		a.logger.ErrorContext(ctx, "Failed to resolve chains", "error", err)
		return err
	}

	report := stats.Aggregate(set, deb.Events)
	if err := report.WriteSummary(out); err != nil {
		return err
	}
	if f.chains {
		if err := writeChains(out, set); err != nil {
			return err
		}
	}

	now := time.Now()
	if !f.noExport {
		oc := config.GetOutputConfig()
		if f.output != "" {
			oc.Dir = f.output
		}
		doc := export.NewReport(a.mission.RunID(), now, deb.Mission, set, report)
		doc.ToolVersion = BuildVersion
		doc.HumanPilots = deb.Pilots
		written, err := export.New(export.Config{Dir: oc.Dir, Compress: oc.Compress}).Write(doc)
		if err != nil {
			a.logger.ErrorContext(ctx, "Failed to export report", "error", err)
			return err
		}
		a.logger.InfoContext(ctx, "Report written", "path", written)
		fmt.Fprintf(out, "\nReport: %s\n", written)
	}

	if ic := config.GetInfluxConfig(); ic.Enabled {
		writeMetrics(ctx, a, ic, deb.Mission, set, report, now)
	}
	return nil
}

// writeMetrics ships the report to InfluxDB. Failures are logged, not
// returned: the report itself has already been produced.
func writeMetrics(ctx context.Context, a *app, ic config.InfluxConfig, m core.Mission, set *core.ChainSet, r stats.Report, at time.Time) {
	mgr := influx.NewManager(a.zlog("influx"), ic)
	defer func() {
		if err := mgr.Close(); err != nil {
			a.logger.WarnContext(ctx, "Failed to close InfluxDB sink", "error", err)
		}
	}()
	if err := mgr.Connect(ctx); err != nil {
		a.logger.WarnContext(ctx, "InfluxDB unavailable", "error", err)
		return
	}
	points := influx.Points(m, set.StreamID, r, set.Anomalies, at)
	if err := mgr.WritePoints(points); err != nil {
		a.logger.WarnContext(ctx, "Failed to write metrics", "error", err)
		return
	}
	a.logger.InfoContext(ctx, "Metrics written", "points", len(points), "server", mgr.Valid())
}

func writeChains(w io.Writer, set *core.ChainSet) error {
	if _, err := fmt.Fprintf(w, "\nChains (%d):\n", set.Len()); err != nil {
		return err
	}
	for _, c := range set.Chains {
		target := c.TargetName
		if target == "" && c.Shot.DeclaredTarget != "" {
			target = c.Shot.DeclaredTarget + " (declared)"
		}
		line := fmt.Sprintf("  %9.2fs %-16s %-22s %-11s %-13s %s",
			c.Shot.FireTime.Seconds(), c.Shot.PilotKey(), c.Shot.WeaponType, c.Outcome, c.Method, target)
		if c.Friendly {
			line += " [friendly]"
		}
		if c.ShooterMismatch {
			line += " [shooter mismatch]"
		}
		if c.ExtraKills > 0 {
			line += fmt.Sprintf(" [+%d splash]", c.ExtraKills)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if n := set.Anomalies.Total(); n > 0 {
		_, err := fmt.Fprintf(w, "Anomalies: %d (%+v)\n", n, set.Anomalies)
		return err
	}
	return nil
}
