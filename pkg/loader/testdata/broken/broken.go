package broken

func New() any {
	return undefinedThing
}
