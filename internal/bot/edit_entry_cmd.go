package bot

import (
	"fmt"
	"github.com/devhunt/devhunt-agent/internal/resources"
	"github.com/pkg/errors"
)

const editEntryCommandName = "Edit entry"

type editEntryCommand struct {
	entryFlow
}

func newEditEntryCommand(api apiInterface, chatID int64, deps *Dependencies) *editEntryCommand {

	cmd := &editEntryCommand{entryFlow: newEntryFlow(api, chatID, deps)}
	cmd.curInput = newResourceInput(chatID, deps.resourceNames(), func(name string) {
		cmd.selectResource(name)
		cmd.chooseRecord()
	})
	return cmd
}

func (c *editEntryCommand) chooseRecord() {
	input, err := newRecordInput(c.chatID, c.manager, func(record resources.Record) {
		if _, err := c.manager.OpenEdit(record.ID); err != nil {
			c.fail(err)
			return
		}
		c.next(c.fieldInput(0))
	})

	if errors.Is(err, errNoRecords) {
		c.finish(fmt.Sprintf("There are no %ss yet.", c.manager.Config().ItemName))
		return
	}
	if err != nil {
		c.fail(err)
		return
	}
	c.next(input)
}
