package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/example/meeting-relay/modules/activity"
	"github.com/example/meeting-relay/modules/api"
	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
)

func newTable(w io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	return table
}

func renderRooms(w io.Writer, rooms api.RoomListResponse) {
	if len(rooms.Rooms) == 0 {
		fmt.Fprintln(w, color.Gray.Render("no live rooms"))
		return
	}

	table := newTable(w, []string{"Room", "Members", "History", "Connections"})
	for _, room := range rooms.Rooms {
		table.Append([]string{
			room.Key,
			strconv.Itoa(room.MemberCount),
			strconv.Itoa(room.History),
			strings.Join(room.Members, ", "),
		})
	}
	table.Render()
}

func renderStats(w io.Writer, stats api.StatsResponse) {
	table := newTable(w, []string{"Counter", "Value"})
	table.AppendBulk([][]string{
		{"connections", strconv.Itoa(stats.Connections)},
		{"rooms", strconv.Itoa(stats.Rooms)},
		{"in room", strconv.Itoa(stats.InRoom)},
		{"rooms with history", strconv.Itoa(stats.HistoryRooms)},
		{"presence records", strconv.Itoa(stats.PresenceRecords)},
		{"attached clients", strconv.Itoa(stats.AttachedClients)},
		{"dropped frames", strconv.FormatInt(stats.DroppedFrames, 10)},
	})
	table.Render()
}

func renderHistory(w io.Writer, history api.HistoryResponse) {
	if len(history.Messages) == 0 {
		fmt.Fprintln(w, color.Gray.Render("no messages"))
		return
	}

	table := newTable(w, []string{"Sent", "Sender", "Connection", "Message"})
	for _, msg := range history.Messages {
		table.Append([]string{
			msg.SentAt.Format("15:04:05"),
			msg.Sender,
			msg.SenderID,
			msg.Data,
		})
	}
	table.Render()
}

func renderActivity(w io.Writer, summary activity.Summary) {
	fmt.Fprintf(w, "joins=%d chat=%d (%d bytes) disconnects=%d\n",
		summary.Joins, summary.ChatMessages, summary.ChatBytes, summary.Disconnects)

	table := newTable(w, []string{"Time", "Kind", "Room", "Connection", "Detail"})
	for _, e := range summary.Recent {
		table.Append([]string{
			e.Timestamp.Format("15:04:05"),
			e.Kind,
			e.Room,
			e.Conn,
			e.Detail,
		})
	}
	table.Render()
}
