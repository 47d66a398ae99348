// Package tuning holds the numeric knobs of the simulation. Values ship
// as illustrative defaults, not contracts; deployments override them in
// tuning.yaml.
package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	// Behavior thresholds, all on the 0..100 needs scale.
	SleepThreshold float64 `yaml:"sleep_threshold"`
	WakeThreshold  float64 `yaml:"wake_threshold"`
	EatThreshold   float64 `yaml:"eat_threshold"`

	// Per-tick rates.
	EnergyDecay   float64 `yaml:"energy_decay"`
	HungerGrowth  float64 `yaml:"hunger_growth"`
	SleepRecovery float64 `yaml:"sleep_recovery"`
	WorkEnergy    float64 `yaml:"work_energy"`
	EatRelief     float64 `yaml:"eat_relief"`
	EatMoodGain   float64 `yaml:"eat_mood_gain"`

	// Probability (0..1) that a full working tick produces an item,
	// before the profession skill multiplier.
	CraftChance float64 `yaml:"craft_chance"`

	WorkdayStartHour int `yaml:"workday_start_hour"`
	WorkdayEndHour   int `yaml:"workday_end_hour"`

	// Event history ring size and how much of its tail a snapshot keeps.
	EventHistoryCap   int `yaml:"event_history_cap"`
	SnapshotEventTail int `yaml:"snapshot_event_tail"`

	// NPC memory log bound (entries).
	MemoryCap int `yaml:"memory_cap"`

	Autosave Autosave `yaml:"autosave"`
}

type Autosave struct {
	// Either trigger may be zero to disable it.
	EverySimMinutes int `yaml:"every_sim_minutes"`
	EveryTicks      int `yaml:"every_ticks"`
	Slots           int `yaml:"slots"`
}

func Defaults() Tuning {
	return Tuning{
		SleepThreshold:    20,
		WakeThreshold:     80,
		EatThreshold:      70,
		EnergyDecay:       1,
		HungerGrowth:      2,
		SleepRecovery:     10,
		WorkEnergy:        4,
		EatRelief:         30,
		EatMoodGain:       5,
		CraftChance:       0.15,
		WorkdayStartHour:  8,
		WorkdayEndHour:    18,
		EventHistoryCap:   1000,
		SnapshotEventTail: 256,
		MemoryCap:         32,
		Autosave: Autosave{
			EverySimMinutes: 1440,
			Slots:           3,
		},
	}
}

// Load reads tuning.yaml over the defaults, so a partial file only
// overrides the keys it names.
func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, t.Validate()
}

func (t Tuning) Validate() error {
	if t.SleepThreshold >= t.WakeThreshold {
		return fmt.Errorf("sleep_threshold %v must be below wake_threshold %v", t.SleepThreshold, t.WakeThreshold)
	}
	if t.WorkdayStartHour < 0 || t.WorkdayEndHour > 24 || t.WorkdayStartHour >= t.WorkdayEndHour {
		return fmt.Errorf("workday window %d..%d out of range", t.WorkdayStartHour, t.WorkdayEndHour)
	}
	if t.EventHistoryCap <= 0 {
		return fmt.Errorf("event_history_cap must be positive")
	}
	if t.Autosave.Slots < 0 {
		return fmt.Errorf("autosave slots must be non-negative")
	}
	return nil
}
