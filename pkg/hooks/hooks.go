// Package hooks enumerates the closed set of well-known script-hook
// function names the engine calls into by name: lifecycle callbacks
// (Create, Destroy, ...) plus eight per-weapon callback families repeated
// for every weapon slot a unit can have.
package hooks

import "fmt"

// MaxWeaponsPerUnit bounds the per-weapon hook families.
const MaxWeaponsPerUnit = 32

// NumWeaponFuncs is how many hook families exist per weapon slot.
const NumWeaponFuncs = 8

// unitFuncNames are the fixed, non-weapon lifecycle/query callbacks, in
// index order starting at 0.
var unitFuncNames = []string{
	"Create", "Destroy", "StartMoving", "StopMoving", "Activate", "Killed",
	"Deactivate", "SetDirection", "SetSpeed", "RockUnit", "HitByWeapon",
	"MoveRate0", "MoveRate1", "MoveRate2", "MoveRate3", "setSFXoccupy",
	"HitByWeaponId", "QueryLandingPadCount", "QueryLandingPad", "Falling",
	"Landed", "BeginTransport", "QueryTransport", "TransportPickup",
	"StartUnload", "EndTransport", "TransportDrop", "SetMaxReloadTime",
	"StartBuilding", "StopBuilding", "QueryNanoPiece", "QueryBuildInfo", "Go",
}

// FuncLast is the index one past the last fixed lifecycle callback, and
// the base offset of the first weapon-family callback.
const FuncLast = 33

// weaponFuncTemplates are the per-weapon callback name templates, in the
// fixed order they're offset within each weapon's NumWeaponFuncs block.
var weaponFuncTemplates = []string{
	"QueryWeapon%d", "AimWeapon%d", "AimFromWeapon%d", "FireWeapon%d",
	"EndBurst%d", "Shot%d", "BlockShot%d", "TargetWeight%d",
}

// NumUnitFuncs is the total size of the hook index space.
const NumUnitFuncs = FuncLast + MaxWeaponsPerUnit*NumWeaponFuncs

var (
	namesByIndex = make([]string, NumUnitFuncs)
	indexByName  = make(map[string]int, NumUnitFuncs+12) // +12 for legacy aliases
)

func init() {
	if len(unitFuncNames) != FuncLast {
		panic(fmt.Sprintf("hooks: unitFuncNames has %d entries, want %d", len(unitFuncNames), FuncLast))
	}
	for i, name := range unitFuncNames {
		namesByIndex[i] = name
		indexByName[name] = i
	}

	for weaponIdx := 0; weaponIdx < MaxWeaponsPerUnit; weaponIdx++ {
		base := FuncLast + weaponIdx*NumWeaponFuncs
		for offset, tmpl := range weaponFuncTemplates {
			name := fmt.Sprintf(tmpl, weaponIdx+1)
			idx := base + offset
			namesByIndex[idx] = name
			indexByName[name] = idx
		}
	}

	// Legacy Primary/Secondary/Tertiary aliases for the first three
	// weapon slots, kept for scripts written against the older naming
	// scheme.
	legacyFamilies := []struct {
		prefix   string
		template string
	}{
		{"Query", "QueryWeapon%d"},
		{"Aim", "AimWeapon%d"},
		{"AimFrom", "AimFromWeapon%d"},
		{"Fire", "FireWeapon%d"},
	}
	legacySuffixes := []string{"Primary", "Secondary", "Tertiary"}
	for _, family := range legacyFamilies {
		for i, suffix := range legacySuffixes {
			canonical := fmt.Sprintf(family.template, i+1)
			indexByName[family.prefix+suffix] = indexByName[canonical]
		}
	}
}

// Lookup resolves a hook function name (canonical or legacy alias) to its
// index, or false if name is not a recognized hook.
func Lookup(name string) (int, bool) {
	idx, ok := indexByName[name]
	return idx, ok
}

// Name returns the canonical name for a hook index, or "" if out of range.
func Name(index int) string {
	if index < 0 || index >= len(namesByIndex) {
		return ""
	}
	return namesByIndex[index]
}

// QueryWeapon, AimWeapon, AimFromWeapon, FireWeapon, EndBurst, Shot,
// BlockShot, and TargetWeight return the hook index for the given
// zero-based weapon slot, erroring if weaponIdx is out of range.

func QueryWeapon(weaponIdx int) (int, error)    { return weaponFunc(weaponIdx, 0) }
func AimWeapon(weaponIdx int) (int, error)      { return weaponFunc(weaponIdx, 1) }
func AimFromWeapon(weaponIdx int) (int, error)  { return weaponFunc(weaponIdx, 2) }
func FireWeapon(weaponIdx int) (int, error)     { return weaponFunc(weaponIdx, 3) }
func EndBurst(weaponIdx int) (int, error)       { return weaponFunc(weaponIdx, 4) }
func Shot(weaponIdx int) (int, error)           { return weaponFunc(weaponIdx, 5) }
func BlockShot(weaponIdx int) (int, error)      { return weaponFunc(weaponIdx, 6) }
func TargetWeight(weaponIdx int) (int, error)   { return weaponFunc(weaponIdx, 7) }

func weaponFunc(weaponIdx, offset int) (int, error) {
	if weaponIdx < 0 || weaponIdx >= MaxWeaponsPerUnit {
		return 0, fmt.Errorf("invalid weapon index: %d", weaponIdx)
	}
	return FuncLast + weaponIdx*NumWeaponFuncs + offset, nil
}
