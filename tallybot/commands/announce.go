package commands

import (
	"context"
	"fmt"

	"github.com/tallybot/tallybot/tallybot"
	"github.com/tallybot/tallybot/tallybot/command"
	"github.com/tallybot/tallybot/tallybot/format"
)

func AnnounceHandler(b *tallybot.Bot) HandlerFunc {
	return func(ctx context.Context, req *Request) (*Reply, error) {
		name := req.Cmd.Arg("name")
		channelID := req.Ctx.ChannelID

		switch req.Cmd.Sub {
		case command.SubCreate:
			a, err := b.Announcements.Create(ctx, channelID, name, req.Cmd.Arg("description"))
			if err != nil {
				return nil, err
			}
			body := fmt.Sprintf("Announcement has been created.\n\n**name:** %s\n**description:** %s\n\nDon't forget to set a goal with `%s announce -goal`.",
				a.Name, format.DescriptionPreview(a.Description), b.Cfg.Bot.Prefix)
			return embedReply(format.Embed(req.User, ":trumpet: announce -create", body, format.SuccessColor)), nil

		case command.SubDelete:
			if err := b.Announcements.Delete(ctx, channelID, name); err != nil {
				return nil, err
			}
			body := fmt.Sprintf("Announcement with name **%s** has been deleted.", name)
			return embedReply(format.Embed(req.User, ":x: announce -delete", body, format.SuccessColor)), nil

		case command.SubGoal:
			return announceGoal(ctx, b, req)

		case command.SubEnable:
			res, err := b.Announcements.Enable(ctx, channelID, name)
			if err != nil {
				return nil, err
			}
			body := fmt.Sprintf("Announcement **%s** is now enabled.", name)
			if res.AlreadyPassed {
				body = fmt.Sprintf("Announcement **%s** is enabled, but its date already passed so nothing is scheduled.", name)
			}
			return embedReply(format.Embed(req.User, ":trumpet: announce -enable", body, format.SuccessColor)), nil

		case command.SubDisable:
			if _, err := b.Announcements.Disable(ctx, channelID, name); err != nil {
				return nil, err
			}
			body := fmt.Sprintf("Announcement **%s** is now disabled. Its goal is kept.", name)
			return embedReply(format.Embed(req.User, ":mute: announce -disable", body, format.SuccessColor)), nil
		}
		// parser guarantees a known subcommand
		return nil, fmt.Errorf("unhandled announce subcommand %q", req.Cmd.Sub)
	}
}

func AnnouncementsHandler(b *tallybot.Bot) HandlerFunc {
	return func(ctx context.Context, req *Request) (*Reply, error) {
		list, err := b.Announcements.List(ctx, req.Ctx.ChannelID)
		if err != nil {
			return nil, err
		}
		return embedReply(format.AnnouncementList(req.User, list)), nil
	}
}

func announceGoal(ctx context.Context, b *tallybot.Bot, req *Request) (*Reply, error) {
	name := req.Cmd.Arg("name")
	channelID := req.Ctx.ChannelID

	switch req.Cmd.GoalType {
	case command.GoalTally:
		tallyName := req.Cmd.Arg("tally")
		count := req.Cmd.Int("count", 0)
		if err := b.Announcements.SetTallyGoal(ctx, channelID, name, tallyName, count); err != nil {
			return nil, err
		}
		body := fmt.Sprintf("Announcement **%s** has been set to alert when tally **%s** reaches %d.",
			name, tallyName, count)
		return embedReply(format.Embed(req.User, ":trumpet: announce -goal", body, format.SuccessColor)), nil

	case command.GoalDate:
		pattern := req.Cmd.Arg("pattern")
		if err := b.Announcements.SetDateGoal(ctx, channelID, name, pattern); err != nil {
			return nil, err
		}
		body := fmt.Sprintf("Announcement **%s** has been scheduled for `%s`.", name, pattern)
		return embedReply(format.Embed(req.User, ":trumpet: announce -goal", body, format.SuccessColor)), nil
	}
	return nil, fmt.Errorf("unhandled goal type %q", req.Cmd.GoalType)
}
