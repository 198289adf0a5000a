package demo

import (
	"math/rand"
	"time"

	"palvideo/fonts/mono"
	"palvideo/gfx"
	"palvideo/video"
)

const (
	minPixelSpeed = 50  // pixels per second
	maxPixelSpeed = 200 // pixels per second
	changeTime    = 5 * time.Second
	animateStep   = 240 * time.Millisecond
	bounceSeed    = 0xCAFEBABE
)

// Messages are the strings TextBounce cycles through.
var Messages = []string{
	"Will this do?",
	"Hello World",
	"Analogue Heaven",
	"PAL video",
	"Who needs LCDs?",
	"Yet another pointless project",
	"Bring back the speccy",
	"The answer is 42",
	"He's dead Jim",
	"I blame Brexit",
}

// bouncer is a w×h box moving at a constant velocity that reverses when the
// next step would leave the screen.
type bouncer struct {
	x, y   int
	dx, dy int
	w, h   int
}

func randomSpeed(r *rand.Rand) int {
	const span = (maxPixelSpeed - minPixelSpeed) * 2
	spd := r.Intn(span)
	if spd >= span/2 {
		spd = spd/2 + minPixelSpeed
	} else {
		spd = -spd/2 - minPixelSpeed
	}
	return spd / video.FieldRate
}

func (b *bouncer) randomise(r *rand.Rand) {
	b.dx = randomSpeed(r)
	b.dy = randomSpeed(r)
}

func (b *bouncer) center(w, h int) {
	b.x = max((w-1-b.w)/2, 0)
	b.y = max((h-1-b.h)/2, 0)
}

// step moves the box and reports whether it moved on either axis.
func (b *bouncer) step(w, h int) bool {
	moved := false
	if nx := b.x + b.dx; nx >= 0 && nx+b.w-1 < w {
		b.x = nx
		moved = true
	} else {
		b.dx = -b.dx
	}
	if ny := b.y + b.dy; ny >= 0 && ny+b.h-1 < h {
		b.y = ny
		moved = true
	} else {
		b.dy = -b.dy
	}
	return moved
}

// TextBounce bounces a message around the screen, switching to the next
// message and font every few seconds.
type TextBounce struct {
	// Fonts to cycle through. Defaults to the small and large fixed fonts.
	Fonts []*mono.Font

	b       bouncer
	msg     string
	msgIdx  int
	fontIdx int
	timer   uint32
}

func (t *TextBounce) Name() string { return "text" }

func (t *TextBounce) fonts() []*mono.Font {
	if len(t.Fonts) == 0 {
		return []*mono.Font{mono.Large, mono.Face7x13}
	}
	return t.Fonts
}

func (t *TextBounce) Start(s *Screen) {
	s.Rand.Seed(bounceSeed)
	t.msgIdx, t.fontIdx = 0, 0
	t.next(s)
}

// Message returns the message on screen and its position.
func (t *TextBounce) Message() (msg string, x, y int) {
	return t.msg, t.b.x, t.b.y
}

func (t *TextBounce) next(s *Screen) {
	s.Canvas.ClearScreen()
	fonts := t.fonts()
	msg := Messages[t.msgIdx]

	s.Text.SetFont(fonts[t.fontIdx])
	if s.Text.TextLen(msg) > s.Width() {
		s.Text.SetFont(smallest(fonts))
	}
	for msg != "" && s.Text.TextLen(msg) > s.Width() {
		msg = msg[:len(msg)-1]
	}

	t.msg = msg
	t.b.w, t.b.h = s.Text.TextLen(msg), s.Text.TextHeight()
	t.b.randomise(s.Rand)
	t.b.center(s.Width(), s.Height())
	s.Canvas.GotoXY(t.b.x, t.b.y)
	s.Text.PutText(msg, gfx.Set)

	t.timer = 0
	t.fontIdx = (t.fontIdx + 1) % len(fonts)
	t.msgIdx = (t.msgIdx + 1) % len(Messages)
}

func smallest(fonts []*mono.Font) *mono.Font {
	f := fonts[0]
	for _, g := range fonts[1:] {
		if g.Advance < f.Advance {
			f = g
		}
	}
	return f
}

func (t *TextBounce) Frame(s *Screen) {
	t.timer++
	ox, oy := t.b.x, t.b.y
	if t.b.step(s.Width(), s.Height()) {
		s.Canvas.GotoXY(ox, oy)
		s.Text.PutText(t.msg, gfx.Clear)
		s.Canvas.GotoXY(t.b.x, t.b.y)
		s.Text.PutText(t.msg, gfx.Set)
	}
	if t.timer >= video.VideoCounts(changeTime) {
		t.next(s)
	}
}

// Invader frames, 12×8.
var (
	Invader1 = &gfx.Image{Width: 12, Height: 8, Bits: []byte{
		0x0f, 0x00,
		0x7f, 0xe0,
		0xff, 0xf0,
		0xe6, 0x70,
		0xff, 0xf0,
		0x19, 0x80,
		0x36, 0xc0,
		0xc0, 0x30,
	}}
	Invader2 = &gfx.Image{Width: 12, Height: 8, Bits: []byte{
		0x0f, 0x00,
		0x7f, 0xe0,
		0xff, 0xf0,
		0xe6, 0x70,
		0xff, 0xf0,
		0x39, 0xc0,
		0x66, 0x60,
		0x30, 0xc0,
	}}
)

// Sprite bounces an animated invader around the screen.
type Sprite struct {
	b     bouncer
	cur   int
	anim  uint32
	timer uint32
}

var invaderFrames = [2]*gfx.Image{Invader1, Invader2}

func (p *Sprite) Name() string { return "sprite" }

func (p *Sprite) Start(s *Screen) {
	s.Rand.Seed(bounceSeed)
	p.cur, p.anim = 0, 0
	p.restart(s)
}

// Position returns the sprite's top-left corner.
func (p *Sprite) Position() (x, y int) { return p.b.x, p.b.y }

func (p *Sprite) restart(s *Screen) {
	s.Canvas.ClearScreen()
	img := invaderFrames[p.cur]
	p.b.w, p.b.h = img.Width, img.Height
	p.b.randomise(s.Rand)
	p.b.center(s.Width(), s.Height())
	p.timer = 0
	s.Canvas.GotoXY(p.b.x, p.b.y)
	s.Canvas.PutBitmap(img, gfx.Set)
}

func (p *Sprite) Frame(s *Screen) {
	p.timer++
	ox, oy := p.b.x, p.b.y
	if p.b.step(s.Width(), s.Height()) {
		p.anim++
		if p.anim >= video.VideoCounts(animateStep) {
			p.anim = 0
			p.cur ^= 1
		}
		s.Canvas.FillRectangle(ox, oy, ox+p.b.w-1, oy+p.b.h-1, gfx.Clear)
		s.Canvas.GotoXY(p.b.x, p.b.y)
		s.Canvas.PutBitmap(invaderFrames[p.cur], gfx.Set)
	}
	if p.timer >= video.VideoCounts(changeTime) {
		p.restart(s)
	}
}
