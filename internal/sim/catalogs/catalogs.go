package catalogs

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

type Catalogs struct {
	Weapons WeaponCatalog
}

type WeaponCatalog struct {
	Palette []string
	Index   map[string]uint16
	Defs    map[string]WeaponDef

	PaletteDigest string
	DefsDigest    string
}

// WeaponDef is an immutable, externally authored timing/damage profile.
// All durations are authored directly in ticks so the simulation never
// converts wall-clock time.
type WeaponDef struct {
	ID     string  `json:"id"`
	Damage int     `json:"damage"`
	Range  float64 `json:"range"`

	WindupTicks         int     `json:"windup_ticks"`
	ActiveTicks         int     `json:"active_ticks"`
	ParryWindowFraction float64 `json:"parry_window_fraction"` // 0.0..1.0, splits active_ticks
	RecoveryTicks       int     `json:"recovery_ticks"`
	CooldownTicks       int     `json:"cooldown_ticks"`

	// Defensive timings when this weapon is used to parry.
	ParryWindupTicks   int `json:"parry_windup_ticks"`
	ParryRecoveryTicks int `json:"parry_recovery_ticks"`

	// Stagger applied to an attacker parried out of this weapon's swing.
	StaggerTicks int `json:"stagger_ticks"`
}

// ParryWindowTicks returns the leading slice of the active window during
// which the attack is parryable. The remainder is the hitbox sub-phase.
func (w WeaponDef) ParryWindowTicks() int {
	return int(float64(w.ActiveTicks) * w.ParryWindowFraction)
}

func (w WeaponDef) HitboxTicks() int {
	return w.ActiveTicks - w.ParryWindowTicks()
}

func Load(configDir string) (*Catalogs, error) {
	var c Catalogs
	if err := loadWeapons(filepath.Join(configDir, "weapons.json"), &c.Weapons); err != nil {
		return nil, err
	}
	return &c, nil
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func loadWeapons(path string, out *WeaponCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	out.DefsDigest = sha256Hex(raw)

	var defs []WeaponDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("weapons.json: %w", err)
	}
	out.Defs = map[string]WeaponDef{}
	for _, d := range defs {
		if d.ID == "" {
			return fmt.Errorf("weapons.json: empty id")
		}
		if err := validateWeapon(d); err != nil {
			return fmt.Errorf("weapons.json: %s: %w", d.ID, err)
		}
		out.Defs[d.ID] = d
	}

	ids := make([]string, 0, len(out.Defs))
	for id := range out.Defs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out.Palette = ids
	out.Index = make(map[string]uint16, len(ids))
	for i, id := range ids {
		out.Index[id] = uint16(i)
	}
	palJSON, _ := json.Marshal(ids)
	out.PaletteDigest = sha256Hex(palJSON)
	return nil
}

func validateWeapon(d WeaponDef) error {
	if d.Damage < 0 {
		return fmt.Errorf("negative damage")
	}
	if d.Range <= 0 {
		return fmt.Errorf("non-positive range")
	}
	if d.WindupTicks <= 0 || d.ActiveTicks <= 0 || d.RecoveryTicks < 0 {
		return fmt.Errorf("bad phase durations")
	}
	if d.ParryWindowFraction < 0 || d.ParryWindowFraction > 1 {
		return fmt.Errorf("parry_window_fraction out of [0,1]")
	}
	if d.CooldownTicks < 0 || d.StaggerTicks < 0 {
		return fmt.Errorf("negative cooldown/stagger")
	}
	if d.ParryWindupTicks <= 0 || d.ParryRecoveryTicks < 0 {
		return fmt.Errorf("bad parry durations")
	}
	return nil
}
