package node

import (
	"fmt"

	"github.com/rulebridge/rulebridge-go/pkg/engine"
	"github.com/rulebridge/rulebridge-go/pkg/guard"
	"github.com/rulebridge/rulebridge-go/pkg/pin"
)

// Diagnostic tags of the node builtins.
const (
	TagPin  = "PIN"
	TagMQTT = "MQTT"
)

func (n *Node) defineBuiltins() {
	for _, fn := range []engine.Function{
		{Name: "pin-mode", MinArgs: 2, MaxArgs: 2, ErrorTag: TagPin, Call: n.fnPinMode},
		{Name: "digital-read", MinArgs: 1, MaxArgs: 1, ErrorTag: TagPin, Call: n.fnDigitalRead},
		{Name: "digital-write", MinArgs: 2, MaxArgs: 2, ErrorTag: TagPin, Call: n.fnDigitalWrite},
		{Name: "pin-reset", MinArgs: 1, MaxArgs: 1, ErrorTag: TagPin, Call: n.fnPinReset},
		{Name: "pin-value", MinArgs: 1, MaxArgs: 1, ErrorTag: TagPin, Call: n.fnPinValue},
		{Name: "node-id", MinArgs: 0, MaxArgs: 0, Call: n.fnNodeID},
		{Name: "mqtt-publish", MinArgs: 2, MaxArgs: 3, ErrorTag: TagMQTT, Call: n.fnPublish},
		{Name: "exit", MinArgs: 0, MaxArgs: 0, Call: n.fnExit},
	} {
		n.env.DefineFunction(fn)
	}
}

func (n *Node) fnPinMode(_ *engine.Environment, args []engine.Value) (engine.Value, error) {
	name, err := engine.NameArg("pin-mode", args, 0)
	if err != nil {
		return engine.Void(), err
	}
	symbol, err := engine.NameArg("pin-mode", args, 1)
	if err != nil {
		return engine.Void(), err
	}
	mode, err := pin.ParseMode(symbol)
	if err != nil {
		return engine.Void(), err
	}
	if err := n.mediator.Configure(name, mode); err != nil {
		return engine.Void(), err
	}

	rec, _ := n.registry.Record(name)
	n.tracePin("configure", name, rec.Line, mode.String(), "")
	return engine.True(), nil
}

func (n *Node) fnDigitalRead(_ *engine.Environment, args []engine.Value) (engine.Value, error) {
	name, err := engine.NameArg("digital-read", args, 0)
	if err != nil {
		return engine.Void(), err
	}
	level, err := n.mediator.Read(name)
	if err != nil {
		return engine.Void(), err
	}

	rec, _ := n.registry.Record(name)
	n.tracePin("read", name, rec.Line, "", level.String())
	return engine.Symbol(level.String()), nil
}

func (n *Node) fnDigitalWrite(_ *engine.Environment, args []engine.Value) (engine.Value, error) {
	name, err := engine.NameArg("digital-write", args, 0)
	if err != nil {
		return engine.Void(), err
	}
	level, err := levelArg(args[1])
	if err != nil {
		return engine.Void(), err
	}
	if err := n.mediator.Write(name, level); err != nil {
		return engine.Void(), err
	}

	rec, _ := n.registry.Record(name)
	n.tracePin("write", name, rec.Line, "", level.String())
	return engine.True(), nil
}

func (n *Node) fnPinReset(_ *engine.Environment, args []engine.Value) (engine.Value, error) {
	name, err := engine.NameArg("pin-reset", args, 0)
	if err != nil {
		return engine.Void(), err
	}
	if _, err := n.registry.ResolveLine(name); err != nil {
		return engine.Void(), err
	}
	if err := n.releasePin(name); err != nil {
		return engine.Void(), err
	}
	return engine.True(), nil
}

func (n *Node) fnPinValue(_ *engine.Environment, args []engine.Value) (engine.Value, error) {
	name, err := engine.NameArg("pin-value", args, 0)
	if err != nil {
		return engine.Void(), err
	}
	level, err := n.mediator.Value(name)
	if err != nil {
		return engine.Void(), err
	}
	return engine.Symbol(level.String()), nil
}

func (n *Node) fnNodeID(*engine.Environment, []engine.Value) (engine.Value, error) {
	return engine.String(n.cfg.NodeID), nil
}

func (n *Node) fnPublish(_ *engine.Environment, args []engine.Value) (engine.Value, error) {
	dst, err := engine.NameArg("mqtt-publish", args, 0)
	if err != nil {
		return engine.Void(), err
	}
	body := args[1].Text()
	replyMe := len(args) > 2 && args[2].Truthy()

	id, err := n.router.Send(n.context(), dst, body, replyMe)
	if err != nil {
		return engine.Void(), err
	}
	return engine.String(id), nil
}

func (n *Node) fnExit(*engine.Environment, []engine.Value) (engine.Value, error) {
	if n.guard.Holder() != guard.SourceConsole {
		n.logDebug("exit ignored outside the console")
		return engine.Void(), nil
	}
	n.exitOnce.Do(func() { close(n.exit) })
	return engine.Void(), nil
}

// levelArg accepts LOW/HIGH symbols as well as 0 and 1.
func levelArg(v engine.Value) (pin.Level, error) {
	if v.Kind == engine.KindInteger {
		switch v.Int {
		case 0:
			return pin.Low, nil
		case 1:
			return pin.High, nil
		}
		return pin.Low, fmt.Errorf("%w: %d", pin.ErrInvalidLevel, v.Int)
	}
	return pin.ParseLevel(v.Text())
}
