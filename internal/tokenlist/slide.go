package tokenlist

import "math"

// slideGroup eases rows toward their layout position across frames while a drag
// rearranges them. Positions are keyed by row index, so it must be reset whenever a
// drag starts.
type slideGroup struct {
	speed   float64
	current map[int]float64
	target  map[int]int
}

func newSlideGroup(speed float64) *slideGroup {
	if speed <= 0 || speed > 1 {
		speed = 0.5
	}
	return &slideGroup{speed: speed}
}

// position advances row id one frame toward target and returns where to draw it.
func (s *slideGroup) position(id, target int) int {
	if s.current == nil {
		s.current = map[int]float64{}
		s.target = map[int]int{}
	}
	s.target[id] = target
	cur, ok := s.current[id]
	if !ok {
		s.current[id] = float64(target)
		return target
	}
	diff := float64(target) - cur
	step := diff * s.speed
	if math.Abs(step) < 1 {
		step = math.Copysign(math.Min(1, math.Abs(diff)), diff)
	}
	cur += step
	s.current[id] = cur
	return int(math.Round(cur))
}

// peek returns where row id was last drawn without advancing it.
func (s *slideGroup) peek(id, target int) int {
	cur, ok := s.current[id]
	if !ok {
		return target
	}
	return int(math.Round(cur))
}

func (s *slideGroup) animating() bool {
	for id, cur := range s.current {
		if math.Abs(cur-float64(s.target[id])) >= 0.5 {
			return true
		}
	}
	return false
}

func (s *slideGroup) reset() {
	s.current = nil
	s.target = nil
}
