package glimpse

import "fmt"

type Key uint32

const (
	KeyUnknown Key = iota
	KeySpace
	KeyEnter
	KeyEscape
	KeyTab
	KeyBackspace
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeyLeftShift
	KeyRightShift
	KeyLeftControl
	KeyRightControl
	Key0
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	Key9
	KeyA
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF
	KeyG
	KeyH
	KeyI
	KeyJ
	KeyK
	KeyL
	KeyM
	KeyN
	KeyO
	KeyP
	KeyQ
	KeyR
	KeyS
	KeyT
	KeyU
	KeyV
	KeyW
	KeyX
	KeyY
	KeyZ
)

var keyNames = map[Key]string{
	KeySpace:        "Space",
	KeyEnter:        "Return",
	KeyEscape:       "Escape",
	KeyTab:          "Tab",
	KeyBackspace:    "Backspace",
	KeyLeft:         "Left",
	KeyRight:        "Right",
	KeyUp:           "Up",
	KeyDown:         "Down",
	KeyLeftShift:    "LShift",
	KeyRightShift:   "RShift",
	KeyLeftControl:  "LCtrl",
	KeyRightControl: "RCtrl",
}

func (k Key) String() string {
	switch {
	case k >= Key0 && k <= Key9:
		return fmt.Sprintf("D%d", k-Key0)

	case k >= KeyA && k <= KeyZ:
		return string(rune('A' + (k - KeyA)))
	}

	if name, ok := keyNames[k]; ok {
		return name
	}

	return "Unknown"
}
