package value

var New = 42
