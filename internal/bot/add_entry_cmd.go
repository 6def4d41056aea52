package bot

const addEntryCommandName = "Add entry"

type addEntryCommand struct {
	entryFlow
}

func newAddEntryCommand(api apiInterface, chatID int64, deps *Dependencies) *addEntryCommand {

	cmd := &addEntryCommand{entryFlow: newEntryFlow(api, chatID, deps)}
	cmd.curInput = newResourceInput(chatID, deps.resourceNames(), func(name string) {
		cmd.selectResource(name)
		cmd.manager.OpenAdd()
		cmd.next(cmd.fieldInput(0))
	})
	return cmd
}
