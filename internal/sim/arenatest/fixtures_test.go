package arenatest

import (
	"duelgrid.gg/internal/sim/arena"
	"duelgrid.gg/internal/sim/catalogs"
)

// Fixed timing profiles for scenario tests. With the longsword, an attack
// started at tick T enters PARRY_WINDOW at T+12, HITBOX at T+19 and
// RECOVERY at T+30; a longsword parry started at P resolves at P+6.
func testCatalogs() *catalogs.Catalogs {
	defs := map[string]catalogs.WeaponDef{
		"LONGSWORD": {
			ID: "LONGSWORD", Damage: 6, Range: 2.0,
			WindupTicks: 12, ActiveTicks: 18, ParryWindowFraction: 0.4,
			RecoveryTicks: 12, CooldownTicks: 30,
			ParryWindupTicks: 6, ParryRecoveryTicks: 18,
			StaggerTicks: 45,
		},
		"DAGGER": {
			ID: "DAGGER", Damage: 2, Range: 1.2,
			WindupTicks: 6, ActiveTicks: 8, ParryWindowFraction: 0.25,
			RecoveryTicks: 4, CooldownTicks: 10,
			ParryWindupTicks: 3, ParryRecoveryTicks: 6,
			StaggerTicks: 20,
		},
	}
	return &catalogs.Catalogs{
		Weapons: catalogs.WeaponCatalog{
			Palette:       []string{"DAGGER", "LONGSWORD"},
			Index:         map[string]uint16{"DAGGER": 0, "LONGSWORD": 1},
			Defs:          defs,
			PaletteDigest: "test-palette",
			DefsDigest:    "test-defs",
		},
	}
}

func testConfig(seed int64) arena.Config {
	return arena.Config{
		ID:                   "test",
		TickRateHz:           60,
		BoundaryR:            64,
		Seed:                 seed,
		CombatEveryTicks:     6,
		PerceptionEveryTicks: 20,
		ReactionMinTicks:     4,
		ReactionMaxTicks:     12,
		PerceptionRange:      16,
		FOVDegrees:           180,
		FacingConeDegrees:    60,
		ActWindowTicks:       60,
		ActMax:               20,
	}
}

// duelists joins a hostile pair in weapon reach, facing each other.
// Consumes ticks 0 and 1; the returned ids are ready to fight at tick 2.
func duelists(h *Harness) (attacker, defender string) {
	attacker = h.Join(JoinOpts{
		Name: "red", Faction: "RED", Weapon: "LONGSWORD",
		Pos: arena.Vec2{X: 0, Y: 0}, Yaw: 0,
	})
	defender = h.Join(JoinOpts{
		Name: "blue", Faction: "BLUE", Weapon: "LONGSWORD",
		Pos: arena.Vec2{X: 1.5, Y: 0}, Yaw: 180,
	})
	return attacker, defender
}
