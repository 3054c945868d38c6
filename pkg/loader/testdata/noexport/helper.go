package helper

func Format(s string) string { return "[" + s + "]" }
