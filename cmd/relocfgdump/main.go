// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"log"
	"os"

	"github.com/relocfg/relocfg"
	"github.com/spf13/cobra"
)

var (
	unquotedKeys   bool
	cComments      bool
	implicitRoot   bool
	optionalCommas bool
	equalsForColon bool
)

func prettyPrint(buf []byte) string {
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, buf, "", "\t"); err != nil {
		return string(buf)
	}
	return pretty.String()
}

func toJSON(d *relocfg.ConfigData, l relocfg.Loc) interface{} {
	switch d.Type(l) {
	case relocfg.KindNull:
		return nil
	case relocfg.KindFalse:
		return false
	case relocfg.KindTrue:
		return true
	case relocfg.KindNumber:
		return d.ToNumber(l)
	case relocfg.KindString:
		return d.ToStringValue(l)
	case relocfg.KindArray:
		n := d.ArraySize(l)
		out := make([]interface{}, n)
		for i := 0; i < n; i++ {
			out[i] = toJSON(d, d.ArrayItem(l, i))
		}
		return out
	case relocfg.KindObject:
		n := d.ObjectSize(l)
		out := make(map[string]interface{}, n)
		for i := 0; i < n; i++ {
			out[d.ObjectKey(l, i)] = toJSON(d, d.ObjectValue(l, i))
		}
		return out
	default:
		return nil
	}
}

func dialectOptions() relocfg.ParseOptions {
	return relocfg.ParseOptions{
		UnquotedKeys:       unquotedKeys,
		CComments:          cComments,
		ImplicitRootObject: implicitRoot,
		OptionalCommas:     optionalCommas,
		EqualsForColon:     equalsForColon,
	}
}

func runParse(cmd *cobra.Command, args []string) {
	raw, err := ioutil.ReadFile(args[0])
	if err != nil {
		log.Fatalf("reading %s: %s", args[0], err)
	}
	src, err := relocfg.StripBOM(raw)
	if err != nil {
		log.Fatalf("stripping BOM: %s", err)
	}

	d, err := relocfg.Make(nil, 0, 0)
	if err != nil {
		log.Fatalf("allocating ConfigData: %s", err)
	}
	if perr := relocfg.Parse(src, d, dialectOptions()); perr != nil {
		log.Fatalf("%s: %s", args[0], perr)
	}

	out, err := json.Marshal(toJSON(d, d.Root()))
	if err != nil {
		log.Fatalf("marshaling result: %s", err)
	}
	fmt.Println(prettyPrint(out))
}

func runPack(cmd *cobra.Command, args []string) {
	raw, err := ioutil.ReadFile(args[0])
	if err != nil {
		log.Fatalf("reading %s: %s", args[0], err)
	}
	src, err := relocfg.StripBOM(raw)
	if err != nil {
		log.Fatalf("stripping BOM: %s", err)
	}

	d, err := relocfg.Make(nil, 0, 0)
	if err != nil {
		log.Fatalf("allocating ConfigData: %s", err)
	}
	if perr := relocfg.Parse(src, d, dialectOptions()); perr != nil {
		log.Fatalf("%s: %s", args[0], perr)
	}

	if err := relocfg.Save(d, args[1]); err != nil {
		log.Fatalf("writing %s: %s", args[1], err)
	}
	for _, a := range d.Anomalies() {
		log.Printf("anomaly: %s", a)
	}
}

func runStats(cmd *cobra.Command, args []string) {
	mf, err := relocfg.LoadFile(args[0])
	if err != nil {
		log.Fatalf("loading %s: %s", args[0], err)
	}
	defer mf.Close()

	stats := mf.Data.Stats()
	statsJSON, _ := json.Marshal(stats)
	fmt.Println(prettyPrint(statsJSON))
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "relocfgdump",
		Short: "A relocatable-config parser and inspector",
		Long:  "relocfgdump parses, packs and inspects relocfg ConfigData images",
	}

	parseCmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse a config file and print it as JSON",
		Args:  cobra.ExactArgs(1),
		Run:   runParse,
	}
	parseCmd.Flags().BoolVar(&unquotedKeys, "unquoted-keys", false, "allow bareword object keys")
	parseCmd.Flags().BoolVar(&cComments, "c-comments", false, "allow // and /* */ comments")
	parseCmd.Flags().BoolVar(&implicitRoot, "implicit-root-object", false, "treat the whole input as an implicit root object's members")
	parseCmd.Flags().BoolVar(&optionalCommas, "optional-commas", false, "make separating commas optional")
	parseCmd.Flags().BoolVar(&equalsForColon, "equals-for-colon", false, "accept = in place of :")

	packCmd := &cobra.Command{
		Use:   "pack <file> <out.rcf>",
		Short: "Parse a config file and write its relocatable ConfigData image",
		Args:  cobra.ExactArgs(2),
		Run:   runPack,
	}
	packCmd.Flags().BoolVar(&unquotedKeys, "unquoted-keys", false, "allow bareword object keys")
	packCmd.Flags().BoolVar(&cComments, "c-comments", false, "allow // and /* */ comments")
	packCmd.Flags().BoolVar(&implicitRoot, "implicit-root-object", false, "treat the whole input as an implicit root object's members")
	packCmd.Flags().BoolVar(&optionalCommas, "optional-commas", false, "make separating commas optional")
	packCmd.Flags().BoolVar(&equalsForColon, "equals-for-colon", false, "accept = in place of :")

	statsCmd := &cobra.Command{
		Use:   "stats <image.rcf>",
		Short: "Memory-map a packed ConfigData image and print its StringTable stats",
		Args:  cobra.ExactArgs(1),
		Run:   runStats,
	}

	rootCmd.AddCommand(parseCmd, packCmd, statsCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
