// Copyright 2023-2024 daviszhen
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/huandu/go-clone"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/xlab/treeprint"
	"go.uber.org/zap"

	"github.com/daviszhen/vexec/pkg/aggregate"
	"github.com/daviszhen/vexec/pkg/block"
	"github.com/daviszhen/vexec/pkg/column"
	"github.com/daviszhen/vexec/pkg/common"
	"github.com/daviszhen/vexec/pkg/exec"
	"github.com/daviszhen/vexec/pkg/util"
)

var defCfg = &util.Config{
	Bench: util.BenchOptions{
		Rows:      1_000_000,
		Groups:    util.DefaultVectorSize,
		NullRatio: 0.1,
		Workers:   runtime.NumCPU(),
	},
	Debug: util.DebugOptions{
		LogLevel: "info",
	},
}

var vexecCfg = clone.Clone(defCfg).(*util.Config)

func init() {
	cobra.OnInitialize(loadConfig)
	initBenchCmd()
	RootCmd.AddCommand(functionsCmd)
}

var info = "vexec"
var RootCmd = &cobra.Command{
	Use:          "vexec",
	Short:        info,
	Long:         info,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("use vexec --help or -h")
	},
}

var benchInfo = "run a hash aggregation benchmark over generated data"
var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: benchInfo,
	Long:  benchInfo,
	RunE: func(cmd *cobra.Command, args []string) error {
		initBenchCfg()
		return runBench(vexecCfg)
	},
}

func initBenchCfg() {
	if viper.IsSet("bench.rows") {
		vexecCfg.Bench.Rows = viper.GetInt("bench.rows")
	}
	if viper.IsSet("bench.groups") {
		vexecCfg.Bench.Groups = viper.GetInt("bench.groups")
	}
	if viper.IsSet("bench.nullRatio") {
		vexecCfg.Bench.NullRatio = viper.GetFloat64("bench.nullRatio")
	}
	if viper.IsSet("bench.workers") {
		vexecCfg.Bench.Workers = viper.GetInt("bench.workers")
	}
	if viper.IsSet("bench.printBlock") {
		vexecCfg.Bench.PrintBlock = viper.GetBool("bench.printBlock")
	}
	if viper.IsSet("debug.logLevel") {
		vexecCfg.Debug.LogLevel = viper.GetString("debug.logLevel")
	}
}

func initBenchCmd() {
	RootCmd.AddCommand(benchCmd)
	benchCmd.Flags().IntVar(&vexecCfg.Bench.Rows, "rows", defCfg.Bench.Rows, "row count")
	benchCmd.Flags().IntVar(&vexecCfg.Bench.Groups, "groups", defCfg.Bench.Groups, "distinct group count")
	benchCmd.Flags().Float64Var(&vexecCfg.Bench.NullRatio, "null_ratio", defCfg.Bench.NullRatio, "fraction of null values")
	benchCmd.Flags().IntVar(&vexecCfg.Bench.Workers, "workers", defCfg.Bench.Workers, "parallel aggregation workers")
	benchCmd.Flags().BoolVar(&vexecCfg.Bench.PrintBlock, "print_block", false, "dump the result block")

	viper.BindPFlag("bench.rows", benchCmd.Flags().Lookup("rows"))
	viper.BindPFlag("bench.groups", benchCmd.Flags().Lookup("groups"))
	viper.BindPFlag("bench.nullRatio", benchCmd.Flags().Lookup("null_ratio"))
	viper.BindPFlag("bench.workers", benchCmd.Flags().Lookup("workers"))
	viper.BindPFlag("bench.printBlock", benchCmd.Flags().Lookup("print_block"))
}

func genBlock(cfg *util.Config) (*block.Block, error) {
	rng := rand.New(rand.NewSource(1))
	keys := column.NewInt64Vector()
	keys.Reserve(cfg.Bench.Rows)
	vals := column.NewFloat64Vector()
	vals.Reserve(cfg.Bench.Rows)
	nullMap := column.NewUint8Vector()
	nullMap.Reserve(cfg.Bench.Rows)
	for i := 0; i < cfg.Bench.Rows; i++ {
		keys.Append(rng.Int63n(int64(cfg.Bench.Groups)))
		vals.Append(rng.Float64() * 100)
		if rng.Float64() < cfg.Bench.NullRatio {
			nullMap.Append(1)
		} else {
			nullMap.Append(0)
		}
	}
	nullable, err := column.NewNullable(vals, nullMap)
	if err != nil {
		return nil, err
	}
	return block.NewBlock(
		block.ColumnWithTypeAndName{Col: keys, Type: common.BigintType(), Name: "k"},
		block.ColumnWithTypeAndName{Col: nullable, Type: common.DoubleType(), Name: "v"},
	)
}

func runBench(cfg *util.Config) error {
	if err := util.SetLogLevel(cfg.Debug.LogLevel); err != nil {
		return err
	}
	b, err := genBlock(cfg)
	if err != nil {
		return err
	}
	gb := exec.NewHashGroupBy(aggregate.NewDefaultRegistry(), cfg.Bench.Workers)
	specs := []exec.AggSpec{
		{Func: "count", Arg: "v", As: "cnt"},
		{Func: "sum", Arg: "v", As: "sum"},
		{Func: "min", Arg: "v", As: "min"},
		{Func: "max", Arg: "v", As: "max"},
		{Func: "avg", Arg: "v", As: "avg"},
	}
	start := time.Now()
	res, err := gb.Execute(context.Background(), b, "k", specs)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)
	util.Info("bench finished",
		zap.Int("rows", cfg.Bench.Rows),
		zap.Int("groups", res.RowCount()),
		zap.Int("workers", cfg.Bench.Workers),
		zap.Duration("elapsed", elapsed))
	if cfg.Bench.PrintBlock {
		fmt.Println(res.Dump())
	}
	return nil
}

var functionsInfo = "list registered aggregate functions"
var functionsCmd = &cobra.Command{
	Use:   "functions",
	Short: functionsInfo,
	Long:  functionsInfo,
	Run: func(cmd *cobra.Command, args []string) {
		tree := treeprint.NewWithRoot("aggregate functions")
		for _, name := range aggregate.NewDefaultRegistry().Names() {
			tree.AddNode(name)
		}
		fmt.Println(tree.String())
	},
}

var defCfgFilePaths = []string{".", "etc"}
var cfgFileName = "vexec.toml"

func loadConfig() {
	for _, dirPath := range defCfgFilePaths {
		fpath := filepath.Join(dirPath, cfgFileName)
		if util.FileIsValid(fpath) {
			_, err := toml.DecodeFile(fpath, vexecCfg)
			if err != nil {
				util.Error("load config file failed",
					zap.String("fpath", fpath),
					zap.Error(err))
				continue
			}
			viper.SetConfigFile(fpath)
			if err := viper.ReadInConfig(); err != nil {
				util.Error("viper load config file failed",
					zap.String("fpath", fpath),
					zap.Error(err))
			}
			return
		}
	}
	// no config file: defaults plus flags
}

func main() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
