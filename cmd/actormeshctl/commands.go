package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

type routedRequest struct {
	Target  string `json:"target"`
	Message struct {
		Type    string `json:"Type"`
		Payload any    `json:"Payload"`
	} `json:"message"`
}

func postRouted(path, target, msgType, payloadJSON string) ([]byte, error) {
	req := routedRequest{Target: target}
	req.Message.Type = msgType
	if payloadJSON != "" {
		var payload any
		if err := json.Unmarshal([]byte(payloadJSON), &payload); err != nil {
			return nil, fmt.Errorf("parsing --payload as JSON: %w", err)
		}
		req.Message.Payload = payload
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(baseURL+path, "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%s: %s", resp.Status, string(out))
	}
	return out, nil
}

func newSendCmd() *cobra.Command {
	var msgType, payload string
	cmd := &cobra.Command{
		Use:   "send <target-path>",
		Short: "Send a fire-and-forget message to an actor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := postRouted("/send/", args[0], msgType, payload)
			if err != nil {
				return err
			}
			fmt.Println("sent")
			return nil
		},
	}
	cmd.Flags().StringVar(&msgType, "type", "", "envelope message type")
	cmd.Flags().StringVar(&payload, "payload", "", "JSON-encoded payload")
	return cmd
}

func newAskCmd() *cobra.Command {
	var msgType, payload string
	cmd := &cobra.Command{
		Use:   "ask <target-path>",
		Short: "Send a message and wait for a correlated response",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := postRouted("/ask/", args[0], msgType, payload)
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
	cmd.Flags().StringVar(&msgType, "type", "", "envelope message type")
	cmd.Flags().StringVar(&payload, "payload", "", "JSON-encoded payload")
	return cmd
}

func newActorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "actors",
		Short: "List actors local to the node",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := http.Get(baseURL + "/actors/")
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			var paths []string
			if err := json.NewDecoder(resp.Body).Decode(&paths); err != nil {
				return err
			}
			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"Actor Path"})
			for _, p := range paths {
				table.Append([]string{p})
			}
			table.Render()
			return nil
		},
	}
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show system-wide stats",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := http.Get(baseURL + "/stats/")
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			var stats map[string]any
			if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
				return err
			}
			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"Metric", "Value"})
			for _, k := range []string{"ActorCount", "PendingAsks"} {
				if v, ok := stats[k]; ok {
					table.Append([]string{k, fmt.Sprint(v)})
				}
			}
			table.Render()
			return nil
		},
	}
}

func newDeadLettersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deadletters",
		Short: "List recent dead letters",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := http.Get(baseURL + "/deadletters/")
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			var letters []map[string]any
			if err := json.NewDecoder(resp.Body).Decode(&letters); err != nil {
				return err
			}
			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"Target", "Reason", "Timestamp"})
			for _, l := range letters {
				ts, _ := l["Timestamp"].(float64)
				table.Append([]string{
					fmt.Sprint(l["TargetPath"]),
					fmt.Sprint(l["Reason"]),
					time.UnixMilli(int64(ts)).Format(time.RFC3339),
				})
			}
			table.Render()
			return nil
		},
	}
}

func newDashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Print the mailbox-load dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := http.Get(baseURL + "/dashboard/")
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			out, err := io.ReadAll(resp.Body)
			if err != nil {
				return err
			}
			fmt.Print(string(out))
			return nil
		},
	}
}
