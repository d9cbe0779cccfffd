package main

import (
	"github.com/brutella/hap/accessory"
	webio "github.com/caarlos0/homekit-webio"
	"golang.org/x/exp/slices"
)

const (
	outputIDOffset = 100
	zoneIDOffset   = 500
)

// Accessories holds everything exposed to HomeKit.
//
// Accessories keep a pointer to their entity, so updating them only needs
// the entities to be reconciled first.
type Accessories struct {
	Outputs []*OutputSwitch
	Zones   []*ZoneSystem
}

func setupAccessories(cfg Config, cli *webio.Client, execute Executor) Accessories {
	return Accessories{
		Outputs: setupOutputs(cfg, cli, execute),
		Zones:   setupZones(cfg, cli, execute),
	}
}

func (a Accessories) Update(cli *webio.Client) {
	for _, o := range a.Outputs {
		o.Update(cli)
	}
	for _, z := range a.Zones {
		z.Update(cli)
	}
}

func (a Accessories) hasOutput(index int) bool {
	for _, o := range a.Outputs {
		if o.index == index {
			return true
		}
	}
	return false
}

func (a Accessories) hasZone(index int) bool {
	for _, z := range a.Zones {
		if z.index == index {
			return true
		}
	}
	return false
}

// reportCreated logs entities that showed up after the accessories were
// built. HomeKit only sees them after a restart, unless an accessory with
// the same index already exists.
func (a Accessories) reportCreated(cfg Config, delta webio.Delta) {
	for _, o := range delta.Outputs {
		createdCounter.WithLabelValues("output").Inc()
		switch {
		case a.hasOutput(o.Index):
			log.Info("output is back", "index", o.Index)
		case slices.Contains(cfg.HiddenOutputs, o.Index):
			log.Debug("new hidden output found", "index", o.Index)
		default:
			log.Warn("new output found, restart the bridge to expose it", "index", o.Index)
		}
	}
	for _, z := range delta.Zones {
		createdCounter.WithLabelValues("zone").Inc()
		if a.hasZone(z.Index) {
			log.Info("zone is back", "index", z.Index, "name", z.DisplayName())
			continue
		}
		log.Warn("new zone found, restart the bridge to expose it", "index", z.Index, "name", z.DisplayName())
	}
}

func (a Accessories) List() []*accessory.A {
	var result []*accessory.A
	for _, o := range a.Outputs {
		result = append(result, o.A)
	}
	for _, z := range a.Zones {
		result = append(result, z.A)
	}
	return result
}

func boolAs[T int | float64](b bool) T {
	if b {
		return 1
	}
	return 0
}

type PageItem struct {
	Kind      string
	Index     int
	Name      string
	State     string
	Available bool
}

func pageItems(cfg Config, cli *webio.Client) []PageItem {
	var items []PageItem
	for _, o := range cli.Outputs() {
		state := "unknown"
		if o.State != nil && *o.State {
			state = "on"
		} else if o.State != nil {
			state = "off"
		}
		items = append(items, PageItem{
			Kind:      "output",
			Index:     o.Index,
			Name:      cfg.outputName(o.Index),
			State:     state,
			Available: o.Available,
		})
	}
	for _, z := range cli.Zones() {
		items = append(items, PageItem{
			Kind:      "zone",
			Index:     z.Index,
			Name:      cfg.zoneName(z),
			State:     z.State.String(),
			Available: z.Available,
		})
	}
	return items
}
