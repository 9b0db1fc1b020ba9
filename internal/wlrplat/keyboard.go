package wlrplat

import (
	"os"
	"time"

	"deedles.dev/wlr"
	"deedles.dev/wlr/xkb"
)

type keyboard struct {
	dev wlr.Keyboard

	onModifiers wlr.Listener
	onKey       wlr.Listener
}

func (p *Platform) onNewInput(device wlr.InputDevice) {
	switch device.Type() {
	case wlr.InputDeviceTypeKeyboard:
		p.addKeyboard(device.Keyboard())
	case wlr.InputDeviceTypePointer:
		p.seat.addPointer(device.Pointer())
	default:
		p.log.WithField("type", device.Type()).Debugln("Ignoring input device")
	}
}

func (p *Platform) addKeyboard(dev wlr.Keyboard) {
	kb := keyboard{dev: dev}

	rules := xkb.RuleNames{
		Rules:   os.Getenv("XKB_DEFAULT_RULES"),
		Model:   os.Getenv("XKB_DEFAULT_MODEL"),
		Layout:  os.Getenv("XKB_DEFAULT_LAYOUT"),
		Variant: os.Getenv("XKB_DEFAULT_VARIANT"),
		Options: os.Getenv("XKB_DEFAULT_OPTIONS"),
	}

	ctx := xkb.NewContext(xkb.ContextNoFlags)
	defer ctx.Unref()

	keymap := xkb.NewKeymapFromNames(ctx, &rules, xkb.KeymapCompileNoFlags)
	defer keymap.Unref()

	dev.SetKeymap(keymap)
	dev.SetRepeatInfo(25, 600)

	seat := p.seat.seat
	kb.onModifiers = dev.OnModifiers(func(k wlr.Keyboard) {
		seat.SetKeyboard(k)
		seat.KeyboardNotifyModifiers(k.Modifiers())
	})
	kb.onKey = dev.OnKey(func(k wlr.Keyboard, t time.Time, code uint32, update bool, state wlr.KeyState) {
		seat.SetKeyboard(k)
		seat.KeyboardNotifyKey(t, code, state)
	})

	seat.SetKeyboard(dev)
	p.keyboards = append(p.keyboards, &kb)

	seat.SetCapabilities(seat.Capabilities() | wlr.SeatCapabilityKeyboard)
}
