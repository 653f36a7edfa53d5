package scenario

import (
	"fmt"
	"maps"
	"slices"

	"github.com/Garsondee/battlescape/internal/battle"
)

// armory builds a fresh copy of each weapon a scenario can hand out. Every
// unit gets its own copy so ammo is not shared.
var armory = map[string]func() *battle.Weapon{
	"rifle": func() *battle.Weapon {
		return &battle.Weapon{Name: "rifle", Class: battle.ClassFirearm, Damage: battle.DamageAP, Power: 30,
			TUAimed: 80, TUSnap: 25, TUAuto: 35, AccuracyAimed: 110, AccuracySnap: 60, AccuracyAuto: 35, Ammo: 20}
	},
	"pistol": func() *battle.Weapon {
		return &battle.Weapon{Name: "pistol", Class: battle.ClassFirearm, Damage: battle.DamageAP, Power: 26,
			TUAimed: 30, TUSnap: 18, AccuracyAimed: 78, AccuracySnap: 60, Ammo: 12}
	},
	"plasma_pistol": func() *battle.Weapon {
		return &battle.Weapon{Name: "plasma_pistol", Class: battle.ClassFirearm, Damage: battle.DamagePlasma, Power: 52,
			TUAimed: 60, TUSnap: 30, TUAuto: 30, AccuracyAimed: 85, AccuracySnap: 65, AccuracyAuto: 50, Ammo: 26}
	},
	"heavy_plasma": func() *battle.Weapon {
		return &battle.Weapon{Name: "heavy_plasma", Class: battle.ClassFirearm, Damage: battle.DamagePlasma, Power: 115,
			TUAimed: 60, TUSnap: 30, TUAuto: 35, AccuracyAimed: 110, AccuracySnap: 75, AccuracyAuto: 50, Ammo: 35}
	},
	"auto_cannon_he": func() *battle.Weapon {
		return &battle.Weapon{Name: "auto_cannon_he", Class: battle.ClassFirearm, Damage: battle.DamageHE, Power: 44, Radius: 1,
			TUAimed: 80, TUSnap: 33, TUAuto: 40, AccuracyAimed: 82, AccuracySnap: 56, AccuracyAuto: 32, Ammo: 14}
	},
	"incendiary_rocket": func() *battle.Weapon {
		return &battle.Weapon{Name: "incendiary_rocket", Class: battle.ClassFirearm, Damage: battle.DamageIncendiary, Power: 90, Radius: 3,
			TUAimed: 75, TUSnap: 45, AccuracyAimed: 115, AccuracySnap: 55, Ammo: 1}
	},
	"grenade": func() *battle.Weapon {
		return &battle.Weapon{Name: "grenade", Class: battle.ClassGrenade, Damage: battle.DamageHE, Power: 50,
			TUPrime: 50, TUThrow: 25, Ammo: 1}
	},
	"alien_grenade": func() *battle.Weapon {
		return &battle.Weapon{Name: "alien_grenade", Class: battle.ClassGrenade, Damage: battle.DamageHE, Power: 90,
			TUPrime: 50, TUThrow: 25, Ammo: 1}
	},
	"smoke_grenade": func() *battle.Weapon {
		return &battle.Weapon{Name: "smoke_grenade", Class: battle.ClassGrenade, Damage: battle.DamageSmoke, Power: 60, Radius: 3,
			TUPrime: 50, TUThrow: 25, Ammo: 1}
	},
	"blaster": func() *battle.Weapon {
		return &battle.Weapon{Name: "blaster", Class: battle.ClassLauncher, Damage: battle.DamageHE, Power: 200,
			TULaunch: 80, AccuracyAimed: 120, Waypoints: -1, Ammo: 3}
	},
	"stun_rod": func() *battle.Weapon {
		return &battle.Weapon{Name: "stun_rod", Class: battle.ClassMelee, Damage: battle.DamageStun, Power: 65,
			TUMelee: 30, Ammo: -1}
	},
	"claws": func() *battle.Weapon {
		return &battle.Weapon{Name: "claws", Class: battle.ClassMelee, Damage: battle.DamageMelee, Power: 40,
			TUMelee: 25, Ammo: -1, StrengthApplied: true}
	},
	"psi_amp": func() *battle.Weapon {
		return &battle.Weapon{Name: "psi_amp", Class: battle.ClassPsiAmp, TUUse: 25, Ammo: -1, LOSRequired: true}
	},
}

// Weapon returns a new weapon by name.
func Weapon(name string) (*battle.Weapon, error) {
	build, ok := armory[name]
	if !ok {
		return nil, fmt.Errorf("unknown weapon %q (have %v)", name, WeaponNames())
	}
	return build(), nil
}

// WeaponNames lists the armory in name order.
func WeaponNames() []string {
	return slices.Sorted(maps.Keys(armory))
}

// Equip hands weapons to u, each to the slot its class belongs in.
func Equip(u *battle.Unit, names ...string) error {
	for _, name := range names {
		w, err := Weapon(name)
		if err != nil {
			return fmt.Errorf("equip %s: %w", u.Name, err)
		}
		switch w.Class {
		case battle.ClassGrenade:
			u.Grenade = w
		case battle.ClassPsiAmp:
			u.PsiAmp = w
		case battle.ClassMelee:
			if u.MainWeapon == nil {
				u.MainWeapon = w
			} else {
				u.MeleeWeapon = w
			}
		default:
			if u.MainWeapon != nil && u.MainWeapon.Class == battle.ClassMelee {
				u.MeleeWeapon = u.MainWeapon
			}
			u.MainWeapon = w
		}
	}
	return nil
}
