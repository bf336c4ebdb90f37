package preprocessor

// unitValueNums is the fixed table of GET/SET value indices scripts refer to
// by name (ACTIVATION, HEALTH, ...). They are ordinary integer constants to
// the compiler; this package is the only place that knows their names, by
// exposing them as predefined object-like macros so a script that writes
// `get HEALTH` sees it expand to `get 4` before parsing ever sees it.
var unitValueNums = map[string]int64{
	"ACTIVATION":              1,
	"STANDINGMOVEORDERS":      2,
	"STANDINGFIREORDERS":      3,
	"HEALTH":                  4,
	"INBUILDSTANCE":           5,
	"BUSY":                    6,
	"PIECE_XZ":                7,
	"PIECE_Y":                 8,
	"UNIT_XZ":                 9,
	"UNIT_Y":                  10,
	"UNIT_HEIGHT":             11,
	"XZ_ATAN":                 12,
	"XZ_HYPOT":                13,
	"ATAN":                    14,
	"HYPOT":                   15,
	"GROUND_HEIGHT":           16,
	"BUILD_PERCENT_LEFT":      17,
	"YARD_OPEN":               18,
	"BUGGER_OFF":              19,
	"ARMORED":                 20,
	"IN_WATER":                28,
	"CURRENT_SPEED":           29,
	"VETERAN_LEVEL":           32,
	"ON_ROAD":                 34,
	"MAX_ID":                  70,
	"MY_ID":                   71,
	"UNIT_TEAM":               72,
	"UNIT_BUILD_PERCENT_LEFT": 73,
	"UNIT_ALLIED":             74,
	"MAX_SPEED":               75,
	"CLOAKED":                 76,
	"WANT_CLOAK":              77,
	"GROUND_WATER_HEIGHT":     78,
	"UPRIGHT":                 79,
	"POW":                     80,
	"PRINT":                   81,
	"HEADING":                 82,
	"TARGET_ID":                83,
	"LAST_ATTACKER_ID":        84,
	"LOS_RADIUS":              85,
	"AIR_LOS_RADIUS":          86,
	"RADAR_RADIUS":            87,
	"JAMMER_RADIUS":           88,
	"SONAR_RADIUS":            89,
	"SONAR_JAM_RADIUS":        90,
	"SEISMIC_RADIUS":          91,
	"DO_SEISMIC_PING":         92,
	"CURRENT_FUEL":            93,
	"TRANSPORT_ID":            94,
	"SHIELD_POWER":            95,
	"STEALTH":                 96,
	"CRASHING":                97,
	"CHANGE_TARGET":           98,
	"CEG_DAMAGE":              99,
	"COB_ID":                  100,
	"PLAY_SOUND":              101,
	"KILL_UNIT":               102,
	"SET_WEAPON_UNIT_TARGET":   106,
	"SET_WEAPON_GROUND_TARGET": 107,
	"SONAR_STEALTH":           108,
	"REVERSING":               109,
	"LUA0":                    110,
	"LUA1":                    111,
	"LUA2":                    112,
	"LUA3":                    113,
	"LUA4":                    114,
	"LUA5":                    115,
	"LUA6":                    116,
	"LUA7":                    117,
	"LUA8":                    118,
	"LUA9":                    119,
	"FLANK_B_MODE":            120,
	"FLANK_B_DIR":             121,
	"FLANK_B_MOBILITY_ADD":    122,
	"FLANK_B_MAX_DAMAGE":      123,
	"FLANK_B_MIN_DAMAGE":      124,
	"WEAPON_RELOADSTATE":      125,
	"WEAPON_RELOADTIME":       126,
	"WEAPON_ACCURACY":         127,
	"WEAPON_SPRAY":            128,
	"WEAPON_RANGE":            129,
	"WEAPON_PROJECTILE_SPEED": 130,
	"COB_MIN":                 131,
	"COB_MAX":                 132,
	"ABS":                     133,
	"GAME_FRAME":              134,
	"KSIN":                    135,
	"KCOS":                    136,
	"KTAN":                    137,
	"SQRT":                    138,
}
