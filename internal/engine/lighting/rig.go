package lighting

import "github.com/Faultbox/iris/pkg/math"

// Rig is the set of lights active in a scene: exactly one ambient light plus
// any number of point and directional lights. Lights are removed by identity.
type Rig struct {
	Ambient     *AmbientLight
	Points      []*PointLight
	Directional []*DirectionalLight
}

// NewRig creates a rig with a white ambient light and no other lights.
func NewRig() *Rig {
	return &Rig{Ambient: &AmbientLight{Colour: math.White}}
}

// AddPoint adds a point light and returns it.
func (r *Rig) AddPoint(l *PointLight) *PointLight {
	r.Points = append(r.Points, l)
	return l
}

// AddDirectional adds a directional light and returns it.
func (r *Rig) AddDirectional(l *DirectionalLight) *DirectionalLight {
	r.Directional = append(r.Directional, l)
	return l
}

// RemovePoint removes l. It is a no-op if l is not in the rig.
func (r *Rig) RemovePoint(l *PointLight) {
	r.Points = removeByIdentity(r.Points, l)
}

// RemoveDirectional removes l. It is a no-op if l is not in the rig.
func (r *Rig) RemoveDirectional(l *DirectionalLight) {
	r.Directional = removeByIdentity(r.Directional, l)
}

func removeByIdentity[T any](list []*T, target *T) []*T {
	for i, item := range list {
		if item == target {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}
