package discord

// ErrorHook handles a failure of a command stage. self is the instance the hook
// is bound to, which for an inherited hook is the parent command.
type ErrorHook func(self Instance, ctx *CommandContext, err error) error

// OptionsErrorHook receives the options that failed validation keyed by name
type OptionsErrorHook func(self Instance, ctx *CommandContext, failed map[string]error) error

// PermissionsHook receives the permission bits that were missing
type PermissionsHook func(self Instance, ctx *CommandContext, missing int64) error

// Hooks are the optional error handlers of a command
type Hooks struct {
	OnMiddlewaresError   ErrorHook
	OnRunError           ErrorHook
	OnOptionsError       OptionsErrorHook
	OnInternalError      ErrorHook
	OnAfterRun           ErrorHook
	OnBotPermissionsFail PermissionsHook
	OnPermissionsFail    PermissionsHook
}

// inherit fills every hook left unset with the matching parent hook bound to
// owner. The parent hooks are copied, so later changes to the parent are not seen.
func (h *Hooks) inherit(parent Hooks, owner Instance) {
	if h.OnMiddlewaresError == nil {
		h.OnMiddlewaresError = bindErrorHook(parent.OnMiddlewaresError, owner)
	}
	if h.OnRunError == nil {
		h.OnRunError = bindErrorHook(parent.OnRunError, owner)
	}
	if h.OnOptionsError == nil {
		h.OnOptionsError = bindOptionsHook(parent.OnOptionsError, owner)
	}
	if h.OnInternalError == nil {
		h.OnInternalError = bindErrorHook(parent.OnInternalError, owner)
	}
	if h.OnAfterRun == nil {
		h.OnAfterRun = bindErrorHook(parent.OnAfterRun, owner)
	}
	if h.OnBotPermissionsFail == nil {
		h.OnBotPermissionsFail = bindPermissionsHook(parent.OnBotPermissionsFail, owner)
	}
	if h.OnPermissionsFail == nil {
		h.OnPermissionsFail = bindPermissionsHook(parent.OnPermissionsFail, owner)
	}
}

func bindErrorHook(fn ErrorHook, owner Instance) ErrorHook {
	if fn == nil {
		return nil
	}
	return func(_ Instance, ctx *CommandContext, err error) error {
		return fn(owner, ctx, err)
	}
}

func bindOptionsHook(fn OptionsErrorHook, owner Instance) OptionsErrorHook {
	if fn == nil {
		return nil
	}
	return func(_ Instance, ctx *CommandContext, failed map[string]error) error {
		return fn(owner, ctx, failed)
	}
}

func bindPermissionsHook(fn PermissionsHook, owner Instance) PermissionsHook {
	if fn == nil {
		return nil
	}
	return func(_ Instance, ctx *CommandContext, missing int64) error {
		return fn(owner, ctx, missing)
	}
}

// inheritMiddlewares returns a fresh slice holding the parent's middlewares
// followed by the child's own.
func inheritMiddlewares(parent, own []string) []string {
	merged := make([]string, 0, len(parent)+len(own))
	merged = append(merged, parent...)
	return append(merged, own...)
}
