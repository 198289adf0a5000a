package demo

import (
	"palvideo/gfx"
	"palvideo/video"
)

const (
	numStars     = 300
	zVanish      = 10000
	warpSpeed    = 500 // depth units per second
	zStep        = warpSpeed / video.FieldRate
	starsPerPass = 4
	starSeed     = 0xDEADBEEF
)

type starState uint8

const (
	starIdle starState = iota
	starMoved
	starExpired
)

type star struct {
	x, y, z        int
	drawX, drawY   int
	clearX, clearY int
	state          starState
}

// Starfield flies through a field of point stars. Stars are plotted while
// the display is blanked and moved the rest of the time, a few per pass of
// the foreground loop.
type Starfield struct {
	stars   []star
	drawIdx int
	moveIdx int
}

func (f *Starfield) Name() string { return "starfield" }

func (f *Starfield) Start(s *Screen) {
	s.Rand.Seed(starSeed)
	f.stars = make([]star, numStars)
	for i := range f.stars {
		f.reset(s, &f.stars[i])
	}
	f.drawIdx, f.moveIdx = 0, 0
}

func (f *Starfield) Frame(s *Screen) {}

func (f *Starfield) Pass(s *Screen, blanking bool) {
	for i := 0; i < starsPerPass; i++ {
		if blanking {
			f.draw(s, &f.stars[f.drawIdx])
			f.drawIdx = (f.drawIdx + 1) % len(f.stars)
		} else {
			f.move(s, &f.stars[f.moveIdx])
			f.moveIdx = (f.moveIdx + 1) % len(f.stars)
		}
	}
}

func (f *Starfield) reset(s *Screen, st *star) {
	w, h := s.Width(), s.Height()
	st.x = s.Rand.Intn(w) - w/2
	st.y = s.Rand.Intn(h) - h/2
	st.z = zVanish
	st.drawX, st.drawY = w/2-1, h/2-1
	st.clearX, st.clearY = st.drawX, st.drawY
	st.state = starMoved
}

func (f *Starfield) draw(s *Screen, st *star) {
	switch st.state {
	case starMoved:
		s.Canvas.SetPixel(st.clearX, st.clearY, gfx.Clear)
		s.Canvas.SetPixel(st.drawX, st.drawY, gfx.Set)
		st.clearX, st.clearY = st.drawX, st.drawY
		st.state = starIdle
	case starExpired:
		s.Canvas.SetPixel(st.clearX, st.clearY, gfx.Clear)
		f.reset(s, st)
		st.state = starIdle
	}
}

// move projects the star one step closer. A star that leaves the screen or
// reaches the viewer expires and is respawned by the next draw.
func (f *Starfield) move(s *Screen, st *star) {
	if st.state != starIdle {
		return
	}
	st.z -= zStep
	if st.z <= 0 {
		st.state = starExpired
		return
	}

	w, h := s.Width(), s.Height()
	x := st.x*w/st.z + w/2
	y := st.y*w/st.z + h/2
	switch {
	case x <= 0 || x >= w || y <= 0 || y >= h:
		st.state = starExpired
	case x != st.drawX || y != st.drawY:
		st.drawX, st.drawY = x, y
		st.state = starMoved
	}
}
