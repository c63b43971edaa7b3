package notation

// DefaultKeyName is used when the fifths count is absent or outside the
// circle-of-fifths table.
const DefaultKeyName = "C major"

// majorKeys maps a fifths count (-7..+7) to its canonical major-key name.
var majorKeys = map[int]string{
	-7: "Cb major",
	-6: "Gb major",
	-5: "Db major",
	-4: "Ab major",
	-3: "Eb major",
	-2: "Bb major",
	-1: "F major",
	0:  "C major",
	1:  "G major",
	2:  "D major",
	3:  "A major",
	4:  "E major",
	5:  "B major",
	6:  "F# major",
	7:  "C# major",
}

// KeyName resolves a fifths count to its major-key name, falling back to
// DefaultKeyName outside the table.
func KeyName(fifths int) string {
	if name, ok := majorKeys[fifths]; ok {
		return name
	}
	return DefaultKeyName
}
