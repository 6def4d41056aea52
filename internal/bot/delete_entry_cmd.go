package bot

import (
	"context"
	"fmt"
	"github.com/devhunt/devhunt-agent/internal/resources"
	"github.com/pkg/errors"
	"strings"
)

const deleteEntryCommandName = "Delete entry"

type deleteEntryCommand struct {
	entryFlow
	record resources.Record
}

func newDeleteEntryCommand(api apiInterface, chatID int64, deps *Dependencies) *deleteEntryCommand {

	cmd := &deleteEntryCommand{entryFlow: newEntryFlow(api, chatID, deps)}
	cmd.curInput = newResourceInput(chatID, deps.resourceNames(), func(name string) {
		cmd.selectResource(name)
		cmd.chooseRecord()
	})
	return cmd
}

func (c *deleteEntryCommand) chooseRecord() {
	input, err := newRecordInput(c.chatID, c.manager, func(record resources.Record) {
		c.record = record
		c.next(newConfirmInput(c.chatID, c.confirmationPrompt(), c.delete))
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

func (c *deleteEntryCommand) confirmationPrompt() string {
	config := c.manager.Config()
	return fmt.Sprintf("Delete %s #%d \"%s\"? This can't be undone.",
		strings.ToLower(config.ItemName), c.record.ID, c.record.Get(config.Primary().Name))
}

func (c *deleteEntryCommand) delete(confirmed bool) {
	item := c.manager.Config().ItemName

	err := c.manager.Delete(context.Background(), c.record.ID, func(string) bool { return confirmed })
	switch {
	case errors.Is(err, resources.ErrNotConfirmed):
		c.finish("Deletion cancelled.")
	case err != nil:
		c.fail(err)
	default:
		c.finish(fmt.Sprintf("%s #%d deleted.", item, c.record.ID))
	}
}
