package discord

import "errors"

var (
	// ErrNotConstructible is returned when a definition file exports something
	// other than a constructor.
	ErrNotConstructible = errors.New("export is not constructible")

	// ErrNoSource is returned when reloading an instance that was not loaded
	// from a definition file.
	ErrNoSource = errors.New("instance has no source file")

	// ErrKindChanged is returned when a reloaded file produces a different
	// kind of command than the loaded instance.
	ErrKindChanged = errors.New("reloaded definition changed kind")

	// ErrUnknownMiddleware is returned when a command names a middleware that
	// was never registered.
	ErrUnknownMiddleware = errors.New("unknown middleware")
)

var (
	// ErrUnknownCommand is returned when an interaction names no loaded command
	ErrUnknownCommand = errors.New("unknown command")

	// ErrMissingOption marks a required option that was not supplied
	ErrMissingOption = errors.New("required option missing")

	// ErrInvalidChoice marks an option value outside its declared choices
	ErrInvalidChoice = errors.New("value is not one of the choices")

	// ErrMissingPermissions is returned when the invoking member lacks the
	// command's permissions and no hook handles it.
	ErrMissingPermissions = errors.New("missing member permissions")

	// ErrMissingBotPermissions is returned when the bot lacks the command's
	// permissions and no hook handles it.
	ErrMissingBotPermissions = errors.New("missing bot permissions")
)
