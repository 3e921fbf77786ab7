package models

// HookSettings is the per-attachment configuration bag stored alongside a
// ColumnHook and copied onto each HookExecution it produces. It is a closed
// set of recognized shapes layered over a permissive map: a hook decodes
// only the keys it understands and ignores the rest, so unrelated settings
// (or settings for a hook kind that changed later) never fail decoding.
type HookSettings map[string]any

// MoveTarget names where a move-task system hook sends the task.
type MoveTarget struct {
	// Next is true when the target is "the column immediately to the
	// right of the triggering column". Named is used otherwise.
	Next  bool
	Named string
}

// PlaySoundSettings configures the system:play-sound hook.
type PlaySoundSettings struct {
	Sound string
}

// MoveTaskSettings configures the system:move-task hook.
type MoveTaskSettings struct {
	Target MoveTarget
}

// PlaySound decodes the "sound" key, if present and well-formed.
func (s HookSettings) PlaySound() (PlaySoundSettings, bool) {
	v, ok := s["sound"]
	if !ok {
		return PlaySoundSettings{}, false
	}
	sound, ok := v.(string)
	if !ok || sound == "" {
		return PlaySoundSettings{}, false
	}
	return PlaySoundSettings{Sound: sound}, true
}

// MoveTask decodes the "target" key, if present and well-formed.
// target is either the literal string "next" or a named column id/slug.
func (s HookSettings) MoveTask() (MoveTaskSettings, bool) {
	v, ok := s["target"]
	if !ok {
		return MoveTaskSettings{}, false
	}
	target, ok := v.(string)
	if !ok || target == "" {
		return MoveTaskSettings{}, false
	}
	if target == "next" {
		return MoveTaskSettings{Target: MoveTarget{Next: true}}, true
	}
	return MoveTaskSettings{Target: MoveTarget{Named: target}}, true
}
