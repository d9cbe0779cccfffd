package main

import (
	"context"
	"net/http"
	"strconv"

	"github.com/brutella/hap"
	"github.com/brutella/hap/accessory"
	webio "github.com/caarlos0/homekit-webio"
)

type OutputSwitch struct {
	*accessory.Switch

	index   int
	output  *webio.Output
	execute Executor
}

func newOutputSwitch(info accessory.Info, output *webio.Output, execute Executor) *OutputSwitch {
	a := &OutputSwitch{
		Switch:  accessory.NewSwitch(info),
		index:   output.Index,
		output:  output,
		execute: execute,
	}
	a.Switch.Switch.On.SetValueRequestFunc = a.updateHandler
	return a
}

// Update mirrors the output into the switch.
// Outputs with an unknown state keep the last known value.
//
// The output is looked up again on every update, as it might have been
// pruned and recreated by the client since the switch was built.
func (a *OutputSwitch) Update(cli *webio.Client) {
	if o := cli.Output(a.index); o != nil {
		a.output = o
	}
	index := strconv.Itoa(a.index)
	availableGauge.WithLabelValues("output", index).Set(boolAs[float64](a.output.Available))
	if a.output.State == nil {
		return
	}
	on := *a.output.State
	outputStateGauge.WithLabelValues(index).Set(boolAs[float64](on))
	if a.Switch.Switch.On.Value() == on {
		return
	}
	a.Switch.Switch.On.SetValue(on)
	log.Info("output", "index", a.index, "on", on)
}

func (a *OutputSwitch) updateHandler(value interface{}, _ *http.Request) (response interface{}, code int) {
	v := value.(bool)
	log.Info("set output", "index", a.index, "on", v)
	if err := a.execute(func(ctx context.Context, _ *webio.Client) error {
		if v {
			return a.output.TurnOn(ctx)
		}
		return a.output.TurnOff(ctx)
	}); err != nil {
		log.Error("failed to set output", "index", a.index, "on", v, "err", err)
		return nil, hap.JsonStatusResourceBusy
	}
	return nil, hap.JsonStatusSuccess
}

func setupOutputs(cfg Config, cli *webio.Client, execute Executor) []*OutputSwitch {
	var outputs []*OutputSwitch
	for _, output := range cfg.visibleOutputs(cli.Outputs()) {
		serial, _ := cli.SerialNumber()
		a := newOutputSwitch(accessory.Info{
			Name:         cfg.outputName(output.Index),
			SerialNumber: serial + "-o" + strconv.Itoa(output.Index),
			Manufacturer: manufacturer,
		}, output, execute)
		a.Update(cli)
		a.Id = uint64(outputIDOffset + output.Index)
		outputs = append(outputs, a)
	}
	return outputs
}
