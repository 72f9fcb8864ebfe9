package repel

type Commands struct {
	app *App
}

func (cmd *Commands) AddResources(resources ...any) *Commands {
	cmd.app.addResources(resources...)
	return cmd
}

// Exit stops App.Run after the current step.
func (cmd *Commands) Exit() {
	cmd.app.requestExit()
}

func (cmd *Commands) Logger() Logger {
	return cmd.app.Logger()
}
