package worldgen

import "strconv"

// Settlement names are built from syllable pairs. Collisions with earlier
// names are retried; if the pool somehow runs dry a numeral is appended.
var (
	namePrefixes = []string{
		"Ald", "Ash", "Bar", "Bel", "Cinder", "Dun", "East", "Elder",
		"Fen", "Glen", "Grim", "Hart", "Haw", "Iron", "Kes", "Lark",
		"Mere", "North", "Oaken", "Raven", "Salt", "Shadow", "Stone",
		"Summer", "Tarn", "Thorn", "Wester", "Winter", "Wolf", "Wyn",
	}
	nameSuffixes = []string{
		"barrow", "bourne", "brook", "burgh", "combe", "cote", "dale",
		"fell", "ford", "garth", "grove", "ham", "haven", "hollow",
		"holt", "mere", "minster", "moor", "mouth", "shore", "stead",
		"strand", "thorpe", "ton", "wade", "watch", "water", "wick",
	}
)

func (g *Generator) settlementName(used map[string]bool) string {
	var name string
	for i := 0; i < 100; i++ {
		name = namePrefixes[g.rng.Intn(len(namePrefixes))] +
			nameSuffixes[g.rng.Intn(len(nameSuffixes))]
		if !used[name] {
			used[name] = true
			return name
		}
	}
	for i := 2; ; i++ {
		numbered := name + " " + strconv.Itoa(i)
		if !used[numbered] {
			used[numbered] = true
			return numbered
		}
	}
}
