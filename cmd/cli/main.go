package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	baseURL string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "facturier-cli",
		Short: "Facturier CLI tool",
		Long:  `A command line interface for interacting with the Facturier API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the Facturier API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	nextNumberCmd := &cobra.Command{
		Use:   "next-number <series>",
		Short: "Reserve the next document number for a series",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			doRequest(http.MethodPost, fmt.Sprintf("/api/v1/series/%s/numbers", args[0]), nil)
		},
	}

	getCmd := &cobra.Command{
		Use:   "get <series> <number>",
		Short: "Fetch a document",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			doRequest(http.MethodGet, fmt.Sprintf("/api/v1/documents/%s/%s", args[0], args[1]), nil)
		},
	}

	var listSeries string
	var listLimit, listOffset int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List recent documents",
		Run: func(cmd *cobra.Command, args []string) {
			q := url.Values{}
			if listSeries != "" {
				q.Set("series", listSeries)
			}
			if listLimit > 0 {
				q.Set("limit", fmt.Sprint(listLimit))
			}
			if listOffset > 0 {
				q.Set("offset", fmt.Sprint(listOffset))
			}
			path := "/api/v1/documents/"
			if len(q) > 0 {
				path += "?" + q.Encode()
			}
			doRequest(http.MethodGet, path, nil)
		},
	}
	listCmd.Flags().StringVar(&listSeries, "series", "", "Filter by series (FAC, DEV, BL, BC)")
	listCmd.Flags().IntVar(&listLimit, "limit", 0, "Page size")
	listCmd.Flags().IntVar(&listOffset, "offset", 0, "Page offset")

	var createFile string
	createCmd := &cobra.Command{
		Use:   "create <series>",
		Short: "Create a document from a JSON file (- for stdin)",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			body, err := readInput(createFile)
			if err != nil {
				fmt.Printf("Error reading input: %v\n", err)
				os.Exit(1)
			}
			doRequest(http.MethodPost, fmt.Sprintf("/api/v1/documents/%s", args[0]), body)
		},
	}
	createCmd.Flags().StringVarP(&createFile, "file", "f", "-", "Path to the document JSON")

	deleteCmd := &cobra.Command{
		Use:   "delete <series> <number>",
		Short: "Tombstone a document (its number is never reused)",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			doRequest(http.MethodDelete, fmt.Sprintf("/api/v1/documents/%s/%s", args[0], args[1]), nil)
		},
	}

	exportCmd := &cobra.Command{
		Use:   "export <series> <number>",
		Short: "Export a document to PDF",
		Run: func(cmd *cobra.Command, args []string) {
			doRequest(http.MethodPost, fmt.Sprintf("/api/v1/documents/%s/%s/export", args[0], args[1]), nil)
		},
		Args: cobra.ExactArgs(2),
	}

	rootCmd.AddCommand(nextNumberCmd, getCmd, listCmd, createCmd, deleteCmd, exportCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func doRequest(method, path string, body []byte) {
	client := &http.Client{Timeout: timeout}

	req, err := http.NewRequest(method, baseURL+path, bytes.NewReader(body))
	if err != nil {
		fmt.Printf("Error building request: %v\n", err)
		os.Exit(1)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= 400 {
		fmt.Printf("Request FAILED (Status: %d)\nResponse: %s\n", resp.StatusCode, string(raw))
		os.Exit(1)
	}

	if len(raw) == 0 {
		fmt.Printf("OK (Status: %d)\n", resp.StatusCode)
		return
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, raw, "", "  "); err != nil {
		fmt.Println(string(raw))
		return
	}
	fmt.Println(pretty.String())
}
