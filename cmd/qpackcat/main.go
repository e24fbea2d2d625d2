// Copyright (C) 2020 Michael J. Fromberger. All Rights Reserved.

// Command qpackcat converts between QPack bytes and JSON on stdin/stdout,
// exercising qpack.Pack and qpack.Unpack end to end.
package main

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/fatih/color"
	"github.com/urfave/cli"

	"github.com/cesbit/qpack-go"
)

func main() {
	app := cli.NewApp()
	app.Name = "qpackcat"
	app.Usage = "convert between QPack bytes and JSON"
	app.Commands = []cli.Command{
		{
			Name:  "encode",
			Usage: "read JSON from stdin, write QPack bytes to stdout",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "decode", Value: "", Usage: "unused for encode; present for symmetry"},
			},
			Action: func(c *cli.Context) error {
				return runEncode(os.Stdin, os.Stdout)
			},
		},
		{
			Name:  "decode",
			Usage: "read QPack bytes from stdin, write JSON to stdout",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "decode", Value: "utf-8", Usage: "raw decode mode: none, utf-8, latin-1"},
			},
			Action: func(c *cli.Context) error {
				mode, err := qpack.ParseDecodeLabel(c.String("decode"))
				if err != nil {
					return err
				}
				return runDecode(os.Stdin, os.Stdout, mode)
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("qpackcat: %v", err))
		os.Exit(1)
	}
}

func runEncode(r io.Reader, w io.Writer) error {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("reading JSON: %w", err)
	}
	tree, err := jsonToQPack(v)
	if err != nil {
		return err
	}
	b, err := qpack.Pack(tree)
	if err != nil {
		return fmt.Errorf("packing: %w", err)
	}
	_, err = w.Write(b)
	return err
}

func runDecode(r io.Reader, w io.Writer, mode qpack.Decode) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	v, err := qpack.Unpack(b, qpack.WithDecode(mode))
	if err != nil {
		return fmt.Errorf("unpacking: %w", err)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(qpackToJSON(v))
}

// jsonToQPack converts a decoded JSON value into the tree qpack.Pack
// expects. Object keys are sorted for deterministic output, since Go's
// encoding/json does not preserve source key order and the codec itself
// imposes no canonicalization of its own.
func jsonToQPack(v interface{}) (interface{}, error) {
	switch t := v.(type) {
	case nil, bool, string:
		return t, nil
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n, nil
		}
		f, err := t.Float64()
		if err != nil {
			return nil, fmt.Errorf("number %q: %w", t, err)
		}
		return f, nil
	case []interface{}:
		out := make(qpack.Seq, len(t))
		for i, elt := range t {
			conv, err := jsonToQPack(elt)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			out[i] = conv
		}
		return out, nil
	case map[string]interface{}:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make(qpack.Map, 0, len(t))
		for _, k := range keys {
			conv, err := jsonToQPack(t[k])
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", k, err)
			}
			out = append(out, qpack.Pair{Key: k, Value: conv})
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported JSON value %T", v)
	}
}

// qpackToJSON converts a decoded qpack tree into a JSON-encodable value.
// Raw bytes are base64-encoded, since JSON has no native byte-string type.
func qpackToJSON(v interface{}) interface{} {
	switch t := v.(type) {
	case []byte:
		return base64.StdEncoding.EncodeToString(t)
	case qpack.Text:
		return t.String()
	case qpack.Seq:
		out := make([]interface{}, len(t))
		for i, elt := range t {
			out[i] = qpackToJSON(elt)
		}
		return out
	case qpack.Map:
		out := make(map[string]interface{}, len(t))
		for _, kv := range t {
			out[fmt.Sprint(kv.Key)] = qpackToJSON(kv.Value)
		}
		return out
	default:
		return t
	}
}
