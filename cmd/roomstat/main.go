// Command roomstat prints the live rooms and counters of a running relay.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/gookit/color"
)

func main() {
	baseURL := flag.String("url", "http://localhost:8000", "relay base URL")
	room := flag.String("room", "", "also print the chat history of this room")
	activity := flag.Int("activity", 0, "also print the N most recent activity entries")
	timeout := flag.Duration("timeout", 5*time.Second, "request timeout")
	flag.Parse()

	client := newClient(*baseURL, *timeout)

	rooms, err := client.rooms()
	if err != nil {
		fail(err)
	}
	stats, err := client.stats()
	if err != nil {
		fail(err)
	}

	color.Cyan.Println("Rooms")
	renderRooms(os.Stdout, rooms)
	fmt.Println()
	renderStats(os.Stdout, stats)

	if *room != "" {
		history, err := client.history(*room)
		if err != nil {
			fail(err)
		}
		fmt.Println()
		color.Cyan.Printf("History of %s\n", *room)
		renderHistory(os.Stdout, history)
	}

	if *activity > 0 {
		summary, err := client.activity(*activity)
		if err != nil {
			fail(err)
		}
		fmt.Println()
		color.Cyan.Println("Recent activity")
		renderActivity(os.Stdout, summary)
	}
}

func fail(err error) {
	color.Red.Printf("roomstat: %v\n", err)
	os.Exit(1)
}
