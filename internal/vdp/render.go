package vdp

// renderLine runs the compositor for one scanline into the back buffer
// as the H-clock crosses that line's boundary (§4.6.4-§4.6.6, §9's
// incremental-rendering preference). The sprite link-list is rebuilt
// once per frame by the caller, not once per line, matching §4.6.6's
// "build_sprite_lists() is executed at the start of a frame".
func (v *VDP) renderLine(y int) {
	width := v.displayWidth()
	for x := 0; x < width; x++ {
		v.back.set(x, y, v.resolvePixel(x, y))
	}
}

func (v *VDP) displayWidth() int {
	if v.Regs[RegMode4]&Mode4H40 != 0 {
		return 320
	}
	return 256
}

// scrollDims decodes register 0x10 into the scroll plane's size in cells
// and pixels (§6 "scroll size"). The invalid 64-cell-squared encoding
// (bits == 2) is treated as 32 cells, matching documented hardware
// behaviour for the reserved combination.
func (v *VDP) scrollDims() (widthCells, heightCells int) {
	sizeBits := func(b uint8) int {
		switch b {
		case 1:
			return 64
		case 3:
			return 128
		default:
			return 32
		}
	}
	widthCells = sizeBits(v.Regs[RegScrollSize] & 0x03)
	heightCells = sizeBits((v.Regs[RegScrollSize] >> 4) & 0x03)
	return
}

func (v *VDP) readWordVRAM(addr uint16) uint16 {
	return uint16(v.VRAM[addr])<<8 | uint16(v.VRAM[addr+1])
}

// hScroll returns (planeA, planeB) scroll values for scanline y, per
// §4.6.4 step 1. Mode 0 is whole-plane (one constant pair); mode 2 is
// per-8-line-cell-row; mode 3 is per-scanline. This follows the
// documented Genesis hardware addressing for modes 2/3 rather than the
// literal "hcell<<5 + line*4" spec prose, which conflates the two modes
// (see DESIGN.md Open Question).
func (v *VDP) hScroll(y int) (a, b uint16) {
	base := uint16(v.Regs[RegHScrollBase]&0x3F) << 10
	mode := v.Regs[RegMode3] & 0x03
	var offset uint16
	switch mode {
	case 2:
		offset = uint16(y/8) * 32
	case 3:
		offset = uint16(y) * 4
	default:
		offset = 0
	}
	a = v.readWordVRAM(base + offset)
	b = v.readWordVRAM(base + offset + 2)
	return
}

// vScroll returns (planeA, planeB) scroll values for screen column x, per
// §4.6.4 step 2: whole-plane, or per-2-cell-column (vcell>>1).
func (v *VDP) vScroll(x int) (a, b uint16) {
	if v.Regs[RegMode3]&0x04 == 0 {
		a = uint16(v.VSRAM[0])<<8 | uint16(v.VSRAM[1])
		b = uint16(v.VSRAM[2])<<8 | uint16(v.VSRAM[3])
		return
	}
	col := (x >> 3) >> 1
	off := col * 4
	if off+3 >= len(v.VSRAM) {
		return 0, 0
	}
	a = uint16(v.VSRAM[off])<<8 | uint16(v.VSRAM[off+1])
	b = uint16(v.VSRAM[off+2])<<8 | uint16(v.VSRAM[off+3])
	return
}

// planeSample is one plane's resolved pixel at a screen coordinate: a
// palette-relative color index (0 = transparent) and its priority bit.
type planeSample struct {
	index    uint8
	priority bool
}

// samplePlane fetches the pattern-name word covering (x,y) in a
// scrolling plane based at base, given the plane's own scroll values and
// the plane's cell dimensions (§4.6.4 steps 1-4).
func (v *VDP) samplePlane(base uint16, widthCells, heightCells int, x, y int, hs, vs uint16) planeSample {
	widthPx := widthCells * 8
	heightPx := heightCells * 8
	px := mod(x-int(hs), widthPx)
	py := mod(y+int(vs), heightPx)
	nameAddr := base + uint16((px/8+(py/8)*widthCells)*2)
	word := v.readWordVRAM(nameAddr)
	pattern := word & 0x07FF
	hflip := word&0x0800 != 0
	vflip := word&0x1000 != 0
	pal := uint8((word >> 13) & 0x3)
	prio := word&0x8000 != 0
	idx := v.patternPixel(pattern, px%8, py%8, hflip, vflip)
	if idx == 0 {
		return planeSample{index: 0, priority: prio}
	}
	return planeSample{index: pal<<4 | idx, priority: prio}
}

func mod(v, m int) int {
	v %= m
	if v < 0 {
		v += m
	}
	return v
}

// patternPixel resolves one pixel of an 8x8 4bpp pattern (§4.6.5).
func (v *VDP) patternPixel(pattern uint16, px, py int, hflip, vflip bool) uint8 {
	line := py
	if vflip {
		line = 7 - py
	}
	col := px / 2
	if hflip {
		col = 3 - col
	}
	base := uint32(pattern) * 32
	addr := base + uint32(line)*4 + uint32(col)
	if addr >= uint32(len(v.VRAM)) {
		return 0
	}
	b := v.VRAM[addr]
	useHigh := px%2 == 0
	if hflip {
		useHigh = !useHigh
	}
	if useHigh {
		return b >> 4
	}
	return b & 0x0F
}

// spriteEntry is one parsed sprite attribute table entry (§4.6.6).
type spriteEntry struct {
	x, y           int
	sizeH, sizeV   int
	link           uint8
	pattern        uint16
	pal            uint8
	hflip, vflip   bool
	priority       bool
}

func (v *VDP) parseSprite(i int) spriteEntry {
	base := uint16(v.Regs[RegSpriteBase]&0x7F) << 9
	addr := base + uint16(i)*8
	if int(addr)+8 > len(v.VRAM) {
		return spriteEntry{}
	}
	vpos := (uint16(v.VRAM[addr])<<8 | uint16(v.VRAM[addr+1])) & 0x3FF
	sizeByte := v.VRAM[addr+2]
	link := v.VRAM[addr+3] & 0x7F
	nameWord := uint16(v.VRAM[addr+4])<<8 | uint16(v.VRAM[addr+5])
	hpos := (uint16(v.VRAM[addr+6])<<8 | uint16(v.VRAM[addr+7])) & 0x1FF
	return spriteEntry{
		x:        int(hpos) - 128,
		y:        int(vpos) - 128,
		sizeH:    int((sizeByte>>2)&0x3) + 1,
		sizeV:    int(sizeByte&0x3) + 1,
		link:     link,
		pattern:  nameWord & 0x07FF,
		pal:      uint8((nameWord >> 13) & 0x3),
		hflip:    nameWord&0x0800 != 0,
		vflip:    nameWord&0x1000 != 0,
		priority: nameWord&0x8000 != 0,
	}
}

// buildSpriteLists walks the sprite link list starting at index 0,
// bucketing each sprite into the scanlines it covers, capping the total
// at 80 entries and stopping at link==0 or an out-of-range link, exactly
// as hardware does (§4.6.6).
func (v *VDP) buildSpriteLists() {
	for i := range v.spriteLines {
		v.spriteLines[i] = v.spriteLines[i][:0]
	}
	idx := 0
	for count := 0; count < 80; count++ {
		e := v.parseSprite(idx)
		top, bot := e.y, e.y+8*e.sizeV
		for line := top; line < bot; line++ {
			if line >= 0 && line < len(v.spriteLines) {
				v.spriteLines[line] = append(v.spriteLines[line], uint8(idx))
			}
		}
		if e.link == 0 || int(e.link) > 79 {
			break
		}
		idx = int(e.link)
	}
}

// spriteSample finds the first non-transparent sprite pixel covering
// (x,y) by walking that scanline's bucket in link order (testable
// property #11: "the sprite earlier in the link-list chain wins").
func (v *VDP) spriteSample(x, y int) (planeSample, bool) {
	if y < 0 || y >= len(v.spriteLines) {
		return planeSample{}, false
	}
	for _, idx := range v.spriteLines[y] {
		e := v.parseSprite(int(idx))
		if x < e.x || x >= e.x+8*e.sizeH {
			continue
		}
		ih := (x - e.x) / 8
		iv := (y - e.y) / 8
		pxInCell := (x - e.x) % 8
		pyInCell := (y - e.y) % 8
		cellIdx := ih*e.sizeV + iv
		if e.hflip {
			cellIdx = (e.sizeH-1-ih)*e.sizeV + iv
		}
		idxColor := v.patternPixel(e.pattern+uint16(cellIdx), pxInCell, pyInCell, e.hflip, e.vflip)
		if idxColor != 0 {
			return planeSample{index: e.pal<<4 | idxColor, priority: e.priority}, true
		}
	}
	return planeSample{}, false
}

// inWindow reports whether (x,y) falls inside the configured window
// rectangle (registers 0x11/0x12), which in the region it covers
// substitutes for Scroll A entirely (§4.6.4 step 5).
// inWindow reports whether (x,y) falls in the window rectangle described
// by registers 0x11 (horizontal split, bit5 selects right-of vs left-of)
// and 0x12 (vertical split, bit7 selects below vs above). A zero split
// point with its direction bit clear describes an empty rectangle, which
// is how software disables the window plane entirely.
func (v *VDP) inWindow(x, y int) bool {
	wx := int(v.Regs[RegWindowX]&0x1F) * 16
	right := v.Regs[RegWindowX]&0x20 != 0
	wy := int(v.Regs[RegWindowY]&0x1F) * 8
	down := v.Regs[RegWindowY]&0x80 != 0

	switch {
	case right:
		return x >= wx
	case wx > 0:
		return x < wx
	}
	switch {
	case down:
		return y >= wy
	case wy > 0:
		return y < wy
	}
	return false
}

// resolvePixel computes the final composited color at (x,y): plane
// sampling (with window substitution), sprite lookup, the priority
// matrix, and shadow/highlight (§4.6.4 steps 3-8).
func (v *VDP) resolvePixel(x, y int) uint32 {
	widthCells, heightCells := v.scrollDims()
	hsA, hsB := v.hScroll(y)
	vsA, vsB := v.vScroll(x)

	aBase := uint16(v.Regs[RegScrollABase]&0x38) << 10
	bBase := uint16(v.Regs[RegScrollBBase]&0x07) << 13

	a := v.samplePlane(aBase, widthCells, heightCells, x, y, hsA, vsA)
	if v.inWindow(x, y) {
		winBase := uint16(v.Regs[RegWindowBase]&0x3E) << 10
		a = v.samplePlane(winBase, widthCells, heightCells, x, y, 0, 0)
	}
	b := v.samplePlane(bBase, widthCells, heightCells, x, y, hsB, vsB)
	sprite, hasSprite := v.spriteSample(x, y)

	order := priorityOrder(a.priority, b.priority, hasSprite && sprite.priority)
	var winner planeSample
	found := false
	for _, layer := range order {
		switch layer {
		case 'A':
			if a.index&0x0F != 0 {
				winner, found = a, true
			}
		case 'B':
			if b.index&0x0F != 0 {
				winner, found = b, true
			}
		case 'S':
			if hasSprite && sprite.index&0x0F != 0 {
				winner, found = sprite, true
			}
		}
		if found {
			break
		}
	}

	if !found {
		return v.colorAt(v.Regs[RegBackdrop]>>4&0x3, v.Regs[RegBackdrop]&0x0F, normalIntensity)
	}
	return v.colorAt(winner.index>>4, winner.index&0x0F, v.intensityFor(winner, a.priority, b.priority))
}

// priorityOrder implements the compositing table of §4.6.4 step 7.
func priorityOrder(aPrio, bPrio, spritePrio bool) [3]byte {
	switch {
	case !aPrio && bPrio && spritePrio:
		return [3]byte{'S', 'B', 'A'}
	case !aPrio && bPrio:
		return [3]byte{'B', 'S', 'A'}
	case aPrio && !bPrio:
		return [3]byte{'A', 'S', 'B'}
	case aPrio && bPrio:
		return [3]byte{'A', 'B', 'S'}
	default:
		return [3]byte{'S', 'A', 'B'}
	}
}

type intensity int

const (
	normalIntensity intensity = iota
	shadowIntensity
	highlightIntensity
)

// intensityFor implements §4.6.4 step 8: palette 3 index 14 is always
// Highlight, index 15 (or neither plane asserting priority) is Shadow,
// else Normal. Shadow and highlight compose as pixel-local attributes
// that simply clamp rather than stack (§9 Open Questions).
func (v *VDP) intensityFor(winner planeSample, aPrio, bPrio bool) intensity {
	if v.Regs[RegMode4]&Mode4ShadowHighlight == 0 {
		return normalIntensity
	}
	pal := winner.index >> 4
	idx := winner.index & 0x0F
	switch {
	case pal == 3 && idx == 14:
		return highlightIntensity
	case pal == 3 && idx == 15:
		return shadowIntensity
	case !aPrio && !bPrio:
		return shadowIntensity
	default:
		return normalIntensity
	}
}

// colorAt decodes a CRAM entry (9-bit BGR, 3 bits/channel) into 32-bit
// RGBA, applying the shadow/highlight intensity by scaling channel
// brightness (§4.6.4 step 8; CRAM layout per §3).
func (v *VDP) colorAt(pal, idx uint8, in intensity) uint32 {
	addr := (uint16(pal)*16 + uint16(idx)) * 2
	if int(addr)+1 >= len(v.CRAM) {
		return 0
	}
	word := uint16(v.CRAM[addr])<<8 | uint16(v.CRAM[addr+1])
	r3 := (word >> 1) & 0x7
	g3 := (word >> 5) & 0x7
	b3 := (word >> 9) & 0x7
	r, g, b := chan8(r3), chan8(g3), chan8(b3)
	switch in {
	case shadowIntensity:
		r, g, b = r/2, g/2, b/2
	case highlightIntensity:
		r = clampAdd(r, 128)
		g = clampAdd(g, 128)
		b = clampAdd(b, 128)
	}
	return 0xFF000000 | uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}

func chan8(v3 uint16) uint8 { return uint8(v3 * 36) }

func clampAdd(v uint8, add int) uint8 {
	n := int(v) + add
	if n > 255 {
		return 255
	}
	return uint8(n)
}
