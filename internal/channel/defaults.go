package channel

// Number of indexed components allowlisted per namespace.
const (
	maxMeters     = 10
	maxEss        = 5
	maxEvcs       = 10
	maxChargers   = 10
	maxPvInverter = 10
	maxIo         = 5
	maxBatteries  = 5
)

// Phase suffixes L1..L3 and relay outputs 1..8.
var (
	phases = Range{From: 1, To: 4}
	relays = Range{From: 1, To: 9}
)

// DefaultAvgTemplates lists the channels written to the average tier.
func DefaultAvgTemplates() []Template {
	return []Template{
		Sum("State", ValueLong),
		Sum("EssSoc", ValueLong),
		Sum("EssActivePower", ValueLong),
		Sum("EssActivePowerL", ValueLong).WithSub(phases.From, phases.To),
		Sum("EssDischargePower", ValueLong),
		Sum("EssCapacity", ValueLong),
		Sum("GridMode", ValueLong),
		Sum("GridActivePower", ValueLong),
		Sum("GridActivePowerL", ValueLong).WithSub(phases.From, phases.To),
		Sum("ProductionActivePower", ValueLong),
		Sum("ProductionAcActivePower", ValueLong),
		Sum("ProductionAcActivePowerL", ValueLong).WithSub(phases.From, phases.To),
		Sum("ProductionDcActualPower", ValueLong),
		Sum("ProductionMaxActivePower", ValueLong),
		Sum("ConsumptionActivePower", ValueLong),
		Sum("ConsumptionActivePowerL", ValueLong).WithSub(phases.From, phases.To),
		Sum("ConsumptionMaxActivePower", ValueLong),

		Namespace("meter", maxMeters, "ActivePower", ValueLong),
		Namespace("meter", maxMeters, "ActivePowerL", ValueLong).WithSub(phases.From, phases.To),
		Namespace("meter", maxMeters, "ReactivePower", ValueLong),
		Namespace("meter", maxMeters, "VoltageL", ValueLong).WithSub(phases.From, phases.To),
		Namespace("meter", maxMeters, "CurrentL", ValueLong).WithSub(phases.From, phases.To),
		Namespace("ess", maxEss, "Soc", ValueLong),
		Namespace("ess", maxEss, "ActivePower", ValueLong),
		Namespace("ess", maxEss, "DcDischargePower", ValueLong),
		Namespace("evcs", maxEvcs, "ChargePower", ValueLong),
		Namespace("evcs", maxEvcs, "Status", ValueLong),
		Namespace("charger", maxChargers, "ActualPower", ValueLong),
		Namespace("pvInverter", maxPvInverter, "ActivePower", ValueLong),
		Namespace("io", maxIo, "Relay", ValueLong).WithSub(relays.From, relays.To),
		Namespace("battery", maxBatteries, "MinCellVoltage", ValueLong),
		Namespace("battery", maxBatteries, "MaxCellVoltage", ValueLong),
		Namespace("battery", maxBatteries, "MinCellTemperature", ValueLong),
		Namespace("battery", maxBatteries, "MaxCellTemperature", ValueLong),
		Namespace("timeOfUseTariff", 1, "QuarterlyPrices", ValueDouble),
		Namespace("ctrlEssTimeOfUseTariff", 1, "QuarterlyPrices", ValueDouble),
	}
}

// DefaultMaxTemplates lists the cumulative channels written to the max tier.
func DefaultMaxTemplates() []Template {
	return []Template{
		Sum("EssDcChargeEnergy", ValueLong),
		Sum("EssDcDischargeEnergy", ValueLong),
		Sum("EssActiveChargeEnergy", ValueLong),
		Sum("EssActiveDischargeEnergy", ValueLong),
		Sum("GridBuyActiveEnergy", ValueLong),
		Sum("GridSellActiveEnergy", ValueLong),
		Sum("ProductionActiveEnergy", ValueLong),
		Sum("ProductionAcActiveEnergy", ValueLong),
		Sum("ProductionDcActiveEnergy", ValueLong),
		Sum("ConsumptionActiveEnergy", ValueLong),
		Sum("UnmanagedConsumptionActiveEnergy", ValueLong),

		Namespace("meter", maxMeters, "ActiveProductionEnergy", ValueLong),
		Namespace("meter", maxMeters, "ActiveProductionEnergyL", ValueLong).WithSub(phases.From, phases.To),
		Namespace("meter", maxMeters, "ActiveConsumptionEnergy", ValueLong),
		Namespace("meter", maxMeters, "ActiveConsumptionEnergyL", ValueLong).WithSub(phases.From, phases.To),
		Namespace("ess", maxEss, "ActiveChargeEnergy", ValueLong),
		Namespace("ess", maxEss, "ActiveDischargeEnergy", ValueLong),
		Namespace("ess", maxEss, "DcChargeEnergy", ValueLong),
		Namespace("ess", maxEss, "DcDischargeEnergy", ValueLong),
		Namespace("evcs", maxEvcs, "ActiveConsumptionEnergy", ValueLong),
		Namespace("charger", maxChargers, "ActualEnergy", ValueLong),
		Namespace("pvInverter", maxPvInverter, "ActiveProductionEnergy", ValueLong),
	}
}

// DefaultAllowlist builds the allowlist from the default templates.
// It panics if the defaults overlap, which is a programming error.
func DefaultAllowlist() *Allowlist {
	a, err := NewAllowlist(DefaultAvgTemplates(), DefaultMaxTemplates())
	if err != nil {
		panic(err)
	}
	return a
}
