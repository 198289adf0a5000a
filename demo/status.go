package demo

import (
	"fmt"

	"palvideo/video"
)

// Status prints a line of signal statistics to the console once a second.
type Status struct {
	fields int
}

func (p *Status) Name() string { return "status" }

func (p *Status) Start(s *Screen) {
	p.fields = 0
	s.Console.Clear()
	s.Console.WriteLineString("palvideo status")
	s.Console.WriteLineString(fmt.Sprintf("%dx%d, %d fields/s", s.Width(), s.Height(), video.FieldRate))
	s.Console.Flush()
}

func (p *Status) Frame(s *Screen) {
	p.fields++
	if p.fields%video.FieldRate != 0 {
		return
	}
	st := s.Stats
	lock := "no lock"
	if st.Locked {
		lock = "locked"
	}
	s.Console.WriteLineString(fmt.Sprintf("field %d overruns %d dropped %d %s",
		st.Fields, st.Overruns, st.Dropped, lock))
	s.Console.Flush()
}
