package main

import (
	"context"
	"net/http"
	"strconv"

	"github.com/brutella/hap"
	"github.com/brutella/hap/accessory"
	"github.com/brutella/hap/characteristic"
	"github.com/brutella/hap/service"
	webio "github.com/caarlos0/homekit-webio"
)

// ZoneSystem exposes a single alarm zone as a HomeKit security system.
type ZoneSystem struct {
	*accessory.A
	SecuritySystem *service.SecuritySystem
	Fault          *characteristic.StatusFault

	index   int
	name    string
	zone    *webio.Zone
	cfg     Config
	execute Executor
}

func newZoneSystem(info accessory.Info, zone *webio.Zone, cfg Config, execute Executor) *ZoneSystem {
	a := &ZoneSystem{
		index:   zone.Index,
		zone:    zone,
		cfg:     cfg,
		execute: execute,
	}
	a.A = accessory.New(info, accessory.TypeSecuritySystem)

	a.SecuritySystem = service.NewSecuritySystem()
	a.AddS(a.SecuritySystem.S)

	a.Fault = characteristic.NewStatusFault()
	a.SecuritySystem.AddC(a.Fault.C)

	a.SecuritySystem.SecuritySystemTargetState.SetValueRequestFunc = a.updateHandler

	// sets the initial target, otherwise it'll keep in "arming" when the
	// bridge restarts.
	if state := targetState(zone.State); state >= 0 {
		err := a.SecuritySystem.SecuritySystemTargetState.SetValue(state)
		log.Info("set target state", "zone", zone.Index, "state", state, "err", err)
	}
	return a
}

// Update mirrors the zone into the security system, looking the zone up
// again in case it was recreated by the client.
func (a *ZoneSystem) Update(cli *webio.Client) {
	if z := cli.Zone(a.index); z != nil {
		a.zone = z
	}
	index := strconv.Itoa(a.index)
	if name := a.cfg.zoneName(a.zone); name != a.name {
		if a.name != "" {
			zoneInfoGauge.DeleteLabelValues(index, a.name)
		}
		zoneInfoGauge.WithLabelValues(index, name).Set(1)
		a.name = name
	}
	zoneStateGauge.WithLabelValues(index).Set(float64(a.zone.State))
	availableGauge.WithLabelValues("zone", index).Set(boolAs[float64](a.zone.Available))

	if v := boolAs[int](!a.zone.Available); a.Fault.Value() != v {
		_ = a.Fault.SetValue(v)
		log.Info("zone status", "zone", a.index, "available", a.zone.Available)
	}

	if v := currentState(a.zone.State); v >= 0 && a.SecuritySystem.SecuritySystemCurrentState.Value() != v {
		err := a.SecuritySystem.SecuritySystemCurrentState.SetValue(v)
		log.Info("set current state", "zone", a.index, "state", a.zone.State, "err", err)
	}
}

func (a *ZoneSystem) updateHandler(
	v interface{},
	_ *http.Request,
) (response interface{}, code int) {
	passcode := a.cfg.passcode()
	switch v.(int) {
	case characteristic.SecuritySystemTargetStateStayArm,
		characteristic.SecuritySystemTargetStateAwayArm,
		characteristic.SecuritySystemTargetStateNightArm:
		log.Info("arm", "zone", a.index)
		if err := a.execute(func(ctx context.Context, _ *webio.Client) error {
			return a.zone.Arm(ctx, passcode)
		}); err != nil {
			log.Error("could not arm", "zone", a.index, "err", err)
			return nil, hap.JsonStatusResourceBusy
		}
	case characteristic.SecuritySystemTargetStateDisarm:
		log.Info("disarm", "zone", a.index)
		if err := a.execute(func(ctx context.Context, _ *webio.Client) error {
			return a.zone.Disarm(ctx, passcode)
		}); err != nil {
			log.Error("could not disarm", "zone", a.index, "err", err)
			return nil, hap.JsonStatusResourceBusy
		}
	default:
		return nil, hap.JsonStatusResourceDoesNotExist
	}
	return nil, hap.JsonStatusSuccess
}

// currentState maps a zone state to the HomeKit current state, or -1 if the
// state is unknown.
func currentState(state webio.ZoneState) int {
	switch state {
	case webio.ZoneDisarmed:
		return characteristic.SecuritySystemCurrentStateDisarmed
	case webio.ZoneArmedAway:
		return characteristic.SecuritySystemCurrentStateAwayArm
	case webio.ZoneTriggered:
		return characteristic.SecuritySystemCurrentStateAlarmTriggered
	default:
		return -1
	}
}

func targetState(state webio.ZoneState) int {
	switch state {
	case webio.ZoneDisarmed:
		return characteristic.SecuritySystemTargetStateDisarm
	case webio.ZoneArmedAway:
		return characteristic.SecuritySystemTargetStateAwayArm
	default:
		return -1
	}
}

func setupZones(cfg Config, cli *webio.Client, execute Executor) []*ZoneSystem {
	var zones []*ZoneSystem
	serial, _ := cli.SerialNumber()
	for _, zone := range cli.Zones() {
		a := newZoneSystem(accessory.Info{
			Name:         cfg.zoneName(zone),
			SerialNumber: serial + "-z" + strconv.Itoa(zone.Index),
			Manufacturer: manufacturer,
		}, zone, cfg, execute)
		a.Update(cli)
		a.Id = uint64(zoneIDOffset + zone.Index)
		zones = append(zones, a)
	}
	return zones
}
