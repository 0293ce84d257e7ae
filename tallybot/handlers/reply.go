package handlers

import (
	"github.com/disgoorg/disgo/discord"
	"github.com/tallybot/tallybot/tallybot/format"
)

func embedMessage(e discord.Embed) discord.MessageCreate {
	return discord.MessageCreate{Embeds: []discord.Embed{e}}
}

func failureMessage(requestedBy, action string, err error) discord.MessageCreate {
	return embedMessage(format.Failure(requestedBy, action, err))
}
