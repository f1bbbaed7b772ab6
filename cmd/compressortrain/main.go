// Command compressortrain is a thin CLI front-end over the compressor train
// engine: it reads a train topology from a YAML config file and evaluates
// it at one operating point, printing the resulting TrainResult. The engine
// itself has no CLI or I/O dependency (spec §5); this binary exists only to
// demonstrate and smoke-test it, mirroring cmd/inmap's root-command shape.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/processcore/compressor/chart"
	"github.com/processcore/compressor/fluid"
	"github.com/processcore/compressor/fluid/idealgas"
	"github.com/processcore/compressor/stage"
	"github.com/processcore/compressor/train"
)

func readConfigBytes(v *viper.Viper) ([]byte, error) {
	path := v.GetString("config")
	if path == "" {
		return nil, fmt.Errorf("compressortrain: --config is required")
	}
	return os.ReadFile(path)
}

func pressureControlFromName(name string) train.PressureControl {
	switch name {
	case "UPSTREAM_CHOKE":
		return train.UpstreamChoke
	case "DOWNSTREAM_CHOKE":
		return train.DownstreamChoke
	case "INDIVIDUAL_ASV_RATE":
		return train.IndividualASVRate
	case "INDIVIDUAL_ASV_PRESSURE":
		return train.IndividualASVPressure
	case "COMMON_ASV":
		return train.CommonASV
	default:
		return train.NoPressureControl
	}
}

func buildStages(spec *trainSpec) ([]*stage.Stage, error) {
	stages := make([]*stage.Stage, 0, len(spec.Stages))
	for i, s := range spec.Stages {
		curves := make([]*chart.Curve, 0, len(s.ChartCurves))
		for _, c := range s.ChartCurves {
			curve, err := chart.NewCurve(c.RateM3H, c.HeadJPerKg, c.Efficiency, c.SpeedRPM)
			if err != nil {
				return nil, fmt.Errorf("stage %d: %w", i, err)
			}
			curves = append(curves, curve)
		}
		var stageChart stage.Chart
		if len(curves) == 1 {
			stageChart = chart.NewSingleSpeedChart(curves[0])
		} else {
			vsc, err := chart.NewVariableSpeedChart(curves)
			if err != nil {
				return nil, fmt.Errorf("stage %d: %w", i, err)
			}
			stageChart = vsc
		}
		st, err := stage.New(stage.Config{
			Chart:                        stageChart,
			PressureDropAheadOfStageBara: s.PressureDropAheadOfStageBar,
			InletTemperatureKelvin:       s.InletTemperatureKelvin,
			RemoveLiquidAfterCooling:     s.RemoveLiquidAfterCooling,
		})
		if err != nil {
			return nil, fmt.Errorf("stage %d: %w", i, err)
		}
		stages = append(stages, st)
	}
	return stages, nil
}

func newEvaluateCommand() *cobra.Command {
	v := viper.New()
	var rateSm3Day, suctionPressureBara, dischargePressureBara, suctionTemperatureKelvin float64

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate a compressor train at one operating point",
		RunE: func(cmd *cobra.Command, args []string) error {
			v.BindPFlags(cmd.Flags())

			spec, err := loadTrainSpec(v)
			if err != nil {
				return err
			}
			composition, err := fluidCompositionFromSpec(spec)
			if err != nil {
				return err
			}
			stages, err := buildStages(spec)
			if err != nil {
				return err
			}

			fluidModel := fluid.NewFluidModel(idealgas.New(), composition, fluid.SRK)
			t, err := train.NewTrainWithFluidModel(
				stages,
				fluidModel,
				pressureControlFromName(spec.PressureControl),
				spec.MaximumPowerMegawatt,
				nil,
				spec.EnergyAdjustmentConstant,
				spec.EnergyAdjustmentFactor,
			)
			if err != nil {
				return err
			}

			result, err := t.Evaluate(rateSm3Day, suctionPressureBara, suctionTemperatureKelvin, dischargePressureBara)
			if err != nil {
				return err
			}

			fmt.Printf("status=%s speed_rpm=%.1f power_raw_mw=%.3f power_reported_mw=%.3f valid=%t\n",
				result.TargetPressureStatus, result.SpeedRPM, result.PowerRawMegawatt, result.PowerReportedMegawatt, result.Valid)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.String("config", "", "path to the train topology YAML file")
	flags.Float64Var(&rateSm3Day, "rate-sm3-day", 0, "requested standard rate [Sm3/day]")
	flags.Float64Var(&suctionPressureBara, "suction-pressure-bara", 0, "suction pressure [bara]")
	flags.Float64Var(&dischargePressureBara, "discharge-pressure-bara", 0, "discharge pressure target [bara]")
	flags.Float64Var(&suctionTemperatureKelvin, "suction-temperature-kelvin", 303.15, "suction temperature [K]")
	cmd.MarkFlagRequired("rate-sm3-day")
	cmd.MarkFlagRequired("suction-pressure-bara")
	cmd.MarkFlagRequired("discharge-pressure-bara")

	return cmd
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "compressortrain",
		Short: "Evaluate compressor train operating points from a YAML topology",
	}
	root.AddCommand(newEvaluateCommand())
	return root
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
