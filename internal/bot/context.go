package bot

type userContext struct {
	chatID         int64
	curCommand     command
	curCommandName string
}

func newUserContext(chatID int64) *userContext {
	return &userContext{chatID: chatID}
}

func (u *userContext) RunCommand(command command, name string) {
	u.Cancel()
	u.setCommand(command, name)
	u.curCommand.Run()
}

func (u *userContext) HasRunningCommand() bool {
	return u.curCommand != nil
}

func (u *userContext) OnUserInput(input string) {
	u.curCommand.OnUserInput(input)
}

// Cancel drops the running command, letting it clean up first.
func (u *userContext) Cancel() {
	if c, ok := u.curCommand.(cancellable); ok {
		c.Cancel()
	}
	u.curCommand = nil
	u.curCommandName = ""
}

func (u *userContext) setCommand(command command, name string) {
	u.curCommand = command
	u.curCommandName = name
	u.curCommand.WithFinishCallback(func() {
		u.curCommand = nil
		u.curCommandName = ""
	})
	u.curCommand.WithKeyboardOnFinalMessage(defaultReplyKeyboard())
}
