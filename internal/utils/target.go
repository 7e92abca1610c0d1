package utils

// MaxTargetNameLength bounds target names taken from flags and the
// environment.
const MaxTargetNameLength = 128

// IsValidTargetName reports whether a target name is safe to echo in logs
// and to use as a keyring service suffix: printable ASCII without brackets
// or control characters.
func IsValidTargetName(name string) bool {
	if name == "" || len(name) > MaxTargetNameLength {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c < 0x20 || c > 0x7e || c == '[' || c == ']' {
			return false
		}
	}
	return name[0] != ' ' && name[len(name)-1] != ' '
}
