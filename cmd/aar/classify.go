package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OCAP2/aar/internal/classify"
)

func classifyCmd() *cobra.Command {
	var target, category string
	cmd := &cobra.Command{
		Use:   "classify <weapon>",
		Short: "Show the engagement domain assigned to a weapon",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			configDir, _ := cmd.Flags().GetString("config")
			a, err := newApp(cmd.Context(), configDir)
			if err != nil {
				return err
			}
			defer a.Close(cmd.Context())

			cls, err := a.classifier()
			if err != nil {
				return err
			}
			kind := classify.KindOf(target)
			res := cls.ClassifyShot(args[0], category, kind)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "weapon:  %s\n", args[0])
			fmt.Fprintf(out, "family:  %s\n", cls.WeaponDomain(args[0]))
			if target != "" {
				fmt.Fprintf(out, "target:  %s (%s)\n", target, targetLabel(kind))
			}
			fmt.Fprintf(out, "domain:  %s\n", res.Domain)
			if res.Inconsistent {
				fmt.Fprintln(out, "warning: air-to-air weapon against a surface target")
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&target, "target", "t", "", "target object type, e.g. Air+FixedWing")
	cmd.Flags().StringVar(&category, "category", "", "weapon category used when the weapon matches no family")
	return cmd
}

func targetLabel(k classify.TargetKind) string {
	switch k {
	case classify.TargetAir:
		return "air"
	case classify.TargetSurface:
		return "surface"
	default:
		return "unknown"
	}
}
