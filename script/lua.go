package script

import (
	"fmt"
	"image"

	"github.com/oliverbestmann/pistonwindow/glimpse"
	"github.com/oliverbestmann/pistonwindow/graphics"
	"github.com/oliverbestmann/pistonwindow/orion"
	lua "github.com/yuin/gopher-lua"
	"golang.org/x/image/math/f32"
)

// HostFunc is a lua function that has access to the session running the
// script.
type HostFunc func(s *Session, L *lua.LState) int

var hostFunctions = map[string]HostFunc{
	"next_event": luaNextEvent,
	"draw":       luaDraw,

	"bind_sound":         luaBindSound,
	"bind_music":         luaBindMusic,
	"play_sound":         luaPlaySound,
	"play_sound_forever": luaPlaySoundForever,
	"play_music":         luaPlayMusic,
	"play_music_forever": luaPlayMusicForever,
	"set_music_volume":   luaSetMusicVolume,

	"load_image":     luaLoadImage,
	"load_image_obj": luaLoadImageObj,
	"image_size":     luaImageSize,
	"image_name":     luaImageName,
	"create_texture": luaCreateTexture,
	"update_texture": luaUpdateTexture,
	"load_font":      luaLoadFont,
	"load_font_obj":  luaLoadFontObj,
	"font_name":      luaFontName,

	"render":               luaRender,
	"update":               luaUpdate,
	"idle":                 luaIdle,
	"press_keyboard_key":   luaButton(false, true),
	"release_keyboard_key": luaButton(false, false),
	"press_mouse_button":   luaButton(true, true),
	"release_mouse_button": luaButton(true, false),
	"mouse_cursor_pos":     luaMouseCursorPos,
	"text_input":           luaTextInput,
	"resize":               luaResize,

	"window_size":      luaWindowSize,
	"window_draw_size": luaWindowDrawSize,
	"window_title":     luaWindowTitle,
	"set_window_title": luaSetWindowTitle,
	"set_window_size":  luaSetWindowSize,
	"should_close":     luaShouldClose,
	"set_should_close": luaSetShouldClose,
}

func (s *Session) registerHostFunctions() {
	for name, fn := range hostFunctions {
		s.Register(name, fn)
	}
}

// Register makes fn callable from scripts under the given global name.
func (s *Session) Register(name string, fn HostFunc) {
	s.lua.SetGlobal(name, s.lua.NewFunction(func(L *lua.LState) int {
		return fn(s, L)
	}))
}

// RunString runs a script from source.
func (s *Session) RunString(source string) error {
	if s.closed {
		return ErrSessionClosed
	}

	return s.lua.DoString(source)
}

// RunFile loads and runs the script file.
func (s *Session) RunFile(file string) error {
	if s.closed {
		return ErrSessionClosed
	}

	return s.lua.DoFile(file)
}

// pushResult pushes true on success or nil followed by the error message.
func pushResult(L *lua.LState, err error) int {
	if err != nil {
		return pushError(L, err)
	}

	L.Push(lua.LTrue)
	return 1
}

func pushError(L *lua.LState, err error) int {
	L.Push(lua.LNil)
	L.Push(lua.LString(err.Error()))
	return 2
}

func pushUserData(L *lua.LState, value any) {
	ud := L.NewUserData()
	ud.Value = value
	L.Push(ud)
}

func luaNextEvent(s *Session, L *lua.LState) int {
	ok, err := s.NextEvent()
	if err != nil {
		return pushError(L, err)
	}

	L.Push(lua.LBool(ok))
	return 1
}

func luaDraw(s *Session, L *lua.LState) int {
	list, err := s.decodeDrawList(L.CheckTable(1))
	if err != nil {
		return pushError(L, err)
	}

	return pushResult(L, s.Draw(list))
}

func luaBindSound(s *Session, L *lua.LState) int {
	return pushResult(L, s.BindSound(L.CheckString(1), L.CheckString(2)))
}

func luaBindMusic(s *Session, L *lua.LState) int {
	return pushResult(L, s.BindMusic(L.CheckString(1), L.CheckString(2)))
}

func luaPlaySound(s *Session, L *lua.LState) int {
	name := L.CheckString(1)
	repeat := L.CheckInt(2)
	volume := float64(L.OptNumber(3, 1))
	return pushResult(L, s.PlaySound(name, repeat, volume))
}

func luaPlaySoundForever(s *Session, L *lua.LState) int {
	name := L.CheckString(1)
	volume := float64(L.OptNumber(2, 1))
	return pushResult(L, s.PlaySoundForever(name, volume))
}

func luaPlayMusic(s *Session, L *lua.LState) int {
	return pushResult(L, s.PlayMusic(L.CheckString(1), L.CheckInt(2)))
}

func luaPlayMusicForever(s *Session, L *lua.LState) int {
	return pushResult(L, s.PlayMusicForever(L.CheckString(1)))
}

func luaSetMusicVolume(s *Session, L *lua.LState) int {
	return pushResult(L, s.SetMusicVolume(float64(L.CheckNumber(1))))
}

func luaLoadImage(s *Session, L *lua.LState) int {
	id, err := s.LoadImage(L.CheckString(1))
	if err != nil {
		return pushError(L, err)
	}

	L.Push(lua.LNumber(id))
	return 1
}

func luaLoadImageObj(s *Session, L *lua.LState) int {
	img, err := s.LoadImageObject(L.CheckString(1))
	if err != nil {
		return pushError(L, err)
	}

	pushUserData(L, img)
	return 1
}

func luaImageSize(s *Session, L *lua.LState) int {
	ref, err := imageRef(L.Get(1))
	if err != nil {
		return pushError(L, err)
	}

	width, height, err := s.ImageSize(ref)
	if err != nil {
		return pushError(L, err)
	}

	L.Push(lua.LNumber(width))
	L.Push(lua.LNumber(height))
	return 2
}

func luaImageName(s *Session, L *lua.LState) int {
	name, err := s.ImageName(L.CheckInt(1))
	if err != nil {
		return pushError(L, err)
	}

	L.Push(lua.LString(name))
	return 1
}

// luaCreateTexture returns a texture id for an image id and a texture
// object for an image object.
func luaCreateTexture(s *Session, L *lua.LState) int {
	ref, err := imageRef(L.Get(1))
	if err != nil {
		return pushError(L, err)
	}

	if ref.Image == nil {
		id, err := s.CreateTexture(ref.ID)
		if err != nil {
			return pushError(L, err)
		}

		L.Push(lua.LNumber(id))
		return 1
	}

	texture, err := s.CreateTextureObject(ref)
	if err != nil {
		return pushError(L, err)
	}

	pushUserData(L, texture)
	return 1
}

func luaUpdateTexture(s *Session, L *lua.LState) int {
	texture, err := textureRef(L.Get(1))
	if err != nil {
		return pushError(L, err)
	}

	img, err := imageRef(L.Get(2))
	if err != nil {
		return pushError(L, err)
	}

	return pushResult(L, s.UpdateTexture(texture, img))
}

func luaLoadFont(s *Session, L *lua.LState) int {
	id, err := s.LoadFont(L.CheckString(1))
	if err != nil {
		return pushError(L, err)
	}

	L.Push(lua.LNumber(id))
	return 1
}

func luaLoadFontObj(s *Session, L *lua.LState) int {
	glyphs, err := s.LoadFontObject(L.CheckString(1))
	if err != nil {
		return pushError(L, err)
	}

	pushUserData(L, glyphs)
	return 1
}

func luaFontName(s *Session, L *lua.LState) int {
	name, err := s.FontName(L.CheckInt(1))
	if err != nil {
		return pushError(L, err)
	}

	L.Push(lua.LString(name))
	return 1
}

func luaRender(s *Session, L *lua.LState) int {
	render, ok := s.event.(orion.Render)
	if !ok {
		L.Push(lua.LFalse)
		return 1
	}

	L.Push(lua.LTrue)
	L.Push(lua.LNumber(render.ExtDt))
	return 2
}

func luaUpdate(s *Session, L *lua.LState) int {
	update, ok := s.event.(orion.Update)
	if !ok {
		L.Push(lua.LFalse)
		return 1
	}

	L.Push(lua.LTrue)
	L.Push(lua.LNumber(update.Dt))
	return 2
}

func luaIdle(s *Session, L *lua.LState) int {
	idle, ok := s.event.(orion.Idle)
	if !ok {
		L.Push(lua.LFalse)
		return 1
	}

	L.Push(lua.LTrue)
	L.Push(lua.LNumber(idle.Dt))
	return 2
}

func (s *Session) input() glimpse.Input {
	if event, ok := s.event.(orion.Input); ok {
		return event.Input
	}

	return nil
}

// luaButton returns the name of the pressed or released button of the
// current event, or nil.
func luaButton(mouse, pressed bool) HostFunc {
	return func(s *Session, L *lua.LState) int {
		input, ok := s.input().(glimpse.ButtonInput)
		if !ok || input.Pressed != pressed || input.Button.IsMouse != mouse {
			L.Push(lua.LNil)
			return 1
		}

		if mouse {
			L.Push(lua.LString(mouseButtonName(input.Button.Mouse)))
		} else {
			L.Push(lua.LString(input.Button.Key.String()))
		}

		return 1
	}
}

func mouseButtonName(button glimpse.MouseButton) string {
	switch button {
	case glimpse.MouseButtonLeft:
		return "left"
	case glimpse.MouseButtonRight:
		return "right"
	case glimpse.MouseButtonMiddle:
		return "middle"
	default:
		return fmt.Sprintf("button%d", button)
	}
}

func luaMouseCursorPos(s *Session, L *lua.LState) int {
	input, ok := s.input().(glimpse.MotionInput)
	if !ok {
		L.Push(lua.LNil)
		return 1
	}

	L.Push(lua.LNumber(input.X))
	L.Push(lua.LNumber(input.Y))
	return 2
}

func luaTextInput(s *Session, L *lua.LState) int {
	input, ok := s.input().(glimpse.TextInput)
	if !ok {
		L.Push(lua.LNil)
		return 1
	}

	L.Push(lua.LString(input.Text))
	return 1
}

func luaResize(s *Session, L *lua.LState) int {
	resize, ok := s.event.(orion.Resize)
	if !ok {
		L.Push(lua.LNil)
		return 1
	}

	L.Push(lua.LNumber(resize.Size.Width))
	L.Push(lua.LNumber(resize.Size.Height))
	return 2
}

func luaWindowSize(s *Session, L *lua.LState) int {
	size := s.window.Size()
	L.Push(lua.LNumber(size.Width))
	L.Push(lua.LNumber(size.Height))
	return 2
}

func luaWindowDrawSize(s *Session, L *lua.LState) int {
	size := s.window.DrawSize()
	L.Push(lua.LNumber(size.Width))
	L.Push(lua.LNumber(size.Height))
	return 2
}

func luaWindowTitle(s *Session, L *lua.LState) int {
	L.Push(lua.LString(s.window.Title()))
	return 1
}

func luaSetWindowTitle(s *Session, L *lua.LState) int {
	s.window.SetTitle(L.CheckString(1))
	return 0
}

func luaSetWindowSize(s *Session, L *lua.LState) int {
	width := L.CheckInt(1)
	height := L.CheckInt(2)
	if width <= 0 || height <= 0 {
		L.ArgError(1, "window size must be positive")
		return 0
	}

	s.window.SetSize(glimpse.Size{Width: uint32(width), Height: uint32(height)})
	return 0
}

func luaShouldClose(s *Session, L *lua.LState) int {
	L.Push(lua.LBool(s.window.ShouldClose()))
	return 1
}

func luaSetShouldClose(s *Session, L *lua.LState) int {
	s.window.SetShouldClose(L.CheckBool(1))
	return 0
}

func imageRef(value lua.LValue) (ImageRef, error) {
	switch value := value.(type) {
	case lua.LNumber:
		return ImageRef{ID: int(value)}, nil

	case *lua.LUserData:
		img, ok := value.Value.(image.Image)
		if !ok {
			return ImageRef{}, fmt.Errorf("%w, got %T", ErrExpectedImage, value.Value)
		}

		return ImageRef{Image: img}, nil

	default:
		return ImageRef{}, fmt.Errorf("%w id or object, got %s", ErrExpectedImage, value.Type())
	}
}

func textureRef(value lua.LValue) (TextureRef, error) {
	switch value := value.(type) {
	case lua.LNumber:
		return TextureRef{ID: int(value)}, nil

	case *lua.LUserData:
		texture, ok := value.Value.(graphics.Texture)
		if !ok {
			return TextureRef{}, fmt.Errorf("%w, got %T", ErrExpectedTexture, value.Value)
		}

		return TextureRef{Texture: texture}, nil

	default:
		return TextureRef{}, fmt.Errorf("%w id or object, got %s", ErrExpectedTexture, value.Type())
	}
}

func (s *Session) decodeDrawList(list *lua.LTable) ([]Instruction, error) {
	instructions := make([]Instruction, 0, list.Len())

	for idx := 1; idx <= list.Len(); idx++ {
		item, ok := list.RawGetInt(idx).(*lua.LTable)
		if !ok {
			return nil, fmt.Errorf("%w: entry %d is not a table", ErrInvalidDraw, idx)
		}

		in, err := s.decodeInstruction(item)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", idx, err)
		}

		instructions = append(instructions, in)
	}

	return instructions, nil
}

func (s *Session) decodeInstruction(item *lua.LTable) (Instruction, error) {
	name := lua.LVAsString(item.RawGetString("op"))

	op, ok := opNames[name]
	if !ok {
		return Instruction{}, fmt.Errorf("%w: unknown op %q", ErrInvalidDraw, name)
	}

	in := Instruction{Op: op}

	var err error

	if in.Color, err = decodeColor(item.RawGetString("color")); err != nil {
		return Instruction{}, err
	}

	if value := item.RawGetString("transform"); value != lua.LNil {
		values, err := decodeFloats(value, 6, "transform")
		if err != nil {
			return Instruction{}, err
		}

		transform := f32.Aff3([6]float32(values))
		in.Transform = &transform
	}

	if value := item.RawGetString("rect"); value != lua.LNil {
		values, err := decodeFloats(value, 4, "rect")
		if err != nil {
			return Instruction{}, err
		}

		in.Rect = graphics.Rect([4]float32(values))
		in.HasRect = true
	}

	switch op {
	case OpRectangle, OpEllipse:
		if !in.HasRect {
			return Instruction{}, fmt.Errorf("%w: %s needs a rect", ErrInvalidDraw, op)
		}

	case OpLine:
		values, err := decodeFloats(item.RawGetString("line"), 4, "line")
		if err != nil {
			return Instruction{}, err
		}

		in.Line = [4]float32(values)
		in.Radius = float32(numberOr(item.RawGetString("radius"), 1))

	case OpPolygon:
		if in.Points, err = decodePoints(item.RawGetString("points")); err != nil {
			return Instruction{}, err
		}

	case OpImage:
		ref, err := textureRef(item.RawGetString("texture"))
		if err != nil {
			return Instruction{}, err
		}

		if in.Texture, err = s.texture(ref); err != nil {
			return Instruction{}, err
		}

	case OpText:
		if in.Font, err = s.decodeFont(item.RawGetString("font")); err != nil {
			return Instruction{}, err
		}

		in.Size = uint32(numberOr(item.RawGetString("size"), 24))
		in.Text = lua.LVAsString(item.RawGetString("text"))

		if value := item.RawGetString("pos"); value != lua.LNil {
			values, err := decodeFloats(value, 2, "pos")
			if err != nil {
				return Instruction{}, err
			}

			in.Pos = [2]float32(values)
		}
	}

	return in, nil
}

func (s *Session) decodeFont(value lua.LValue) (graphics.GlyphCache, error) {
	switch value := value.(type) {
	case *lua.LNilType:
		return s.font(0)

	case lua.LNumber:
		return s.font(int(value))

	case *lua.LUserData:
		glyphs, ok := value.Value.(graphics.GlyphCache)
		if !ok {
			return nil, fmt.Errorf("%w, got %T", ErrExpectedFont, value.Value)
		}

		return glyphs, nil

	default:
		return nil, fmt.Errorf("%w id or object, got %s", ErrExpectedFont, value.Type())
	}
}

// decodeColor accepts a table of three or four numbers or a hex string.
// Without a color, white is used.
func decodeColor(value lua.LValue) (graphics.Color, error) {
	switch value := value.(type) {
	case *lua.LNilType:
		return graphics.Color{1, 1, 1, 1}, nil

	case lua.LString:
		return graphics.ColorHex(string(value))

	case *lua.LTable:
		color := graphics.Color{1, 1, 1, 1}

		count := value.Len()
		if count != 3 && count != 4 {
			return graphics.Color{}, fmt.Errorf("%w: color needs 3 or 4 components, got %d", ErrInvalidDraw, count)
		}

		for idx := range count {
			component, ok := value.RawGetInt(idx + 1).(lua.LNumber)
			if !ok {
				return graphics.Color{}, fmt.Errorf("%w: color component %d is not a number", ErrInvalidDraw, idx+1)
			}

			color[idx] = float32(component)
		}

		return color, nil

	default:
		return graphics.Color{}, fmt.Errorf("%w: color must be a table or string, got %s", ErrInvalidDraw, value.Type())
	}
}

// decodePoints reads a list of {x, y} pairs.
func decodePoints(value lua.LValue) ([][2]float32, error) {
	table, ok := value.(*lua.LTable)
	if !ok || table.Len() < 3 {
		return nil, fmt.Errorf("%w: polygon needs at least 3 points", ErrInvalidDraw)
	}

	points := make([][2]float32, table.Len())
	for idx := range points {
		values, err := decodeFloats(table.RawGetInt(idx+1), 2, fmt.Sprintf("point %d", idx+1))
		if err != nil {
			return nil, err
		}

		points[idx] = [2]float32(values)
	}

	return points, nil
}

func decodeFloats(value lua.LValue, count int, name string) ([]float32, error) {
	table, ok := value.(*lua.LTable)
	if !ok || table.Len() != count {
		return nil, fmt.Errorf("%w: %s needs %d numbers", ErrInvalidDraw, name, count)
	}

	values := make([]float32, count)
	for idx := range values {
		number, ok := table.RawGetInt(idx + 1).(lua.LNumber)
		if !ok {
			return nil, fmt.Errorf("%w: %s component %d is not a number", ErrInvalidDraw, name, idx+1)
		}

		values[idx] = float32(number)
	}

	return values, nil
}

func numberOr(value lua.LValue, fallback float64) float64 {
	if number, ok := value.(lua.LNumber); ok {
		return float64(number)
	}

	return fallback
}
