package node

// command is any external instruction routed through a Manager's command
// channel. Every variant carries its own one-shot reply channel so that a
// Handle method can await exactly its own response.
type command interface {
	isCommand()
}

type connectCommand struct {
	reply chan error
}

func (connectCommand) isCommand() {}

type disconnectCommand struct {
	reply chan struct{}
}

func (disconnectCommand) isCommand() {}

type destroyCommand struct {
	reply chan struct{}
}

func (destroyCommand) isCommand() {}

type getDataCommand struct {
	reply chan Snapshot
}

func (getDataCommand) isCommand() {}
