package graphics

import (
	"fmt"

	"github.com/Faultbox/iris/pkg/math"
)

// Bone is one joint of a skeleton. Parent is -1 for roots.
type Bone struct {
	Name   string
	Parent int
	Offset math.Mat4 // Mesh space to bone space
	Local  math.Mat4 // Bind pose relative to the parent
}

// Key is a keyframe value at a time in seconds.
type Key[T any] struct {
	Time  float32
	Value T
}

// Channel animates one bone.
type Channel struct {
	Positions []Key[math.Vec3]
	Rotations []Key[math.Quat]
	Scales    []Key[math.Vec3]
}

// Animation is a named set of bone channels.
type Animation struct {
	Name     string
	Duration float32 // Seconds
	Channels map[string]Channel
}

// Skeleton is a bone hierarchy plus the animations that can drive it.
type Skeleton struct {
	bones      []Bone
	animations map[string]Animation
	current    string
	time       float32
	transforms []math.Mat4
}

// NewSkeleton creates a skeleton in its bind pose.
func NewSkeleton(bones []Bone, animations []Animation) *Skeleton {
	s := &Skeleton{
		bones:      bones,
		animations: make(map[string]Animation, len(animations)),
		transforms: make([]math.Mat4, len(bones)),
	}
	for _, a := range animations {
		s.animations[a.Name] = a
	}
	s.rebuild()
	return s
}

func (s *Skeleton) Bones() []Bone { return s.bones }

// Animation returns the name of the playing animation.
func (s *Skeleton) Animation() string { return s.current }

// SetAnimation selects an animation and rewinds it.
func (s *Skeleton) SetAnimation(name string) error {
	if _, ok := s.animations[name]; !ok {
		return fmt.Errorf("skeleton has no animation %q", name)
	}
	s.current = name
	s.time = 0
	s.rebuild()
	return nil
}

// Advance moves the playing animation forward, looping at its end.
func (s *Skeleton) Advance(dt float32) {
	anim, ok := s.animations[s.current]
	if !ok {
		return
	}
	s.time += dt
	if anim.Duration > 0 {
		for s.time > anim.Duration {
			s.time -= anim.Duration
		}
	}
	s.rebuild()
}

// Transforms returns the skinning matrix of every bone, indexed like Bones.
func (s *Skeleton) Transforms() []math.Mat4 {
	return s.transforms
}

// rebuild recomputes the skinning matrices at the current time.
func (s *Skeleton) rebuild() {
	anim, animated := s.animations[s.current]

	globals := make([]math.Mat4, len(s.bones))
	done := make([]bool, len(s.bones))
	visiting := make([]bool, len(s.bones))

	var resolve func(i int) math.Mat4
	resolve = func(i int) math.Mat4 {
		if done[i] {
			return globals[i]
		}
		// A parent loop is broken by treating the bone as a root
		if visiting[i] {
			return math.Identity()
		}
		visiting[i] = true

		bone := &s.bones[i]
		local := bone.Local
		if animated {
			if ch, ok := anim.Channels[bone.Name]; ok {
				local = ch.sample(s.time)
			}
		}

		global := local
		if bone.Parent >= 0 && bone.Parent < len(s.bones) && bone.Parent != i {
			global = resolve(bone.Parent).Mul(local)
		}
		globals[i] = global
		done[i] = true
		return global
	}

	for i := range s.bones {
		s.transforms[i] = resolve(i).Mul(s.bones[i].Offset)
	}
}

func (c Channel) sample(t float32) math.Mat4 {
	pos := interpolate(c.Positions, t, math.Zero, math.Vec3.Lerp)
	rot := interpolate(c.Rotations, t, math.QuatIdentity(), math.Quat.Slerp)
	scale := interpolate(c.Scales, t, math.One, math.Vec3.Lerp)
	return math.TRS(pos, rot, scale)
}

// interpolate samples keys sorted by time. Before the first key the first
// value holds and past the last key the last value holds.
func interpolate[T any](keys []Key[T], t float32, fallback T, lerp func(T, T, float32) T) T {
	if len(keys) == 0 {
		return fallback
	}
	if len(keys) == 1 {
		return keys[0].Value
	}

	// Find surrounding keyframes
	var prev, next int
	for i := range keys {
		if keys[i].Time > t {
			next = i
			break
		}
		prev = i
		next = i
	}

	if prev == next {
		return keys[prev].Value
	}

	k0 := keys[prev]
	k1 := keys[next]
	f := float32(0)
	if k1.Time != k0.Time {
		f = (t - k0.Time) / (k1.Time - k0.Time)
	}
	return lerp(k0.Value, k1.Value, f)
}
