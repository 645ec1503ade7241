package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/vfs/pkg/vfs"
	"github.com/arthur-debert/vfs/pkg/vfs/backend"
	"github.com/arthur-debert/vfs/pkg/vfs/sys"
)

func newLsCommand() *cobra.Command {
	var recursive, dirs, files bool

	cmd := &cobra.Command{
		Use:   "ls [path]",
		Short: "List the contents of a directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) == 1 {
				path = args[0]
			}

			var list func(string) ([]string, error)
			switch {
			case recursive && dirs:
				list = vfs.AllDirs
			case recursive && files:
				list = vfs.AllFiles
			case recursive:
				list = vfs.AllPaths
			case dirs:
				list = vfs.Dirs
			case files:
				list = vfs.Files
			default:
				list = vfs.Paths
			}

			paths, err := list(path)
			if err != nil {
				return err
			}
			for _, p := range paths {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&recursive, "recursive", "R", false, "List everything beneath the directory")
	cmd.Flags().BoolVarP(&dirs, "dirs", "d", false, "List only directories")
	cmd.Flags().BoolVarP(&files, "files", "f", false, "List only files")
	cmd.MarkFlagsMutuallyExclusive("dirs", "files")

	return cmd
}

func newTreeCommand() *cobra.Command {
	var (
		maxDepth  int
		pattern   string
		dirsFirst bool
	)

	cmd := &cobra.Command{
		Use:   "tree [path]",
		Short: "Print a directory tree",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) == 1 {
				path = args[0]
			}
			root, err := vfs.Abs(path)
			if err != nil {
				return err
			}

			entries, err := vfs.Entries(root)
			if err != nil {
				return err
			}
			entries = entries.MaxDepth(maxDepth)
			if dirsFirst {
				entries = entries.DirsFirst()
			}
			if pattern != "" {
				entries = entries.Glob(pattern)
			}

			base := len(sys.Components(root))
			for entry, err := range entries.All() {
				if err != nil {
					return err
				}
				depth := len(sys.Components(entry.Path())) - base
				fmt.Fprintf(cmd.OutOrStdout(), "%s%s\n", strings.Repeat("  ", depth), describe(entry, depth == 0))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&maxDepth, "max-depth", "L", -1, "Descend at most this many levels")
	cmd.Flags().StringVarP(&pattern, "glob", "g", "", "Only show entries matching the pattern")
	cmd.Flags().BoolVar(&dirsFirst, "dirs-first", false, "Show directories before files")

	return cmd
}

func describe(e backend.Entry, full bool) string {
	name := e.Name()
	if full {
		name = e.Path()
	}
	switch {
	case e.IsSymlink():
		return name + " -> " + e.Rel()
	case e.IsDir():
		return name + sys.Separator
	}
	return name
}

func newCatCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cat <path>...",
		Short: "Print file contents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, path := range args {
				data, err := vfs.ReadAll(path)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), data)
			}
			return nil
		},
	}
}

func newWriteCommand() *cobra.Command {
	var appendMode bool

	cmd := &cobra.Command{
		Use:   "write <path> [content]",
		Short: "Write content to a file",
		Long:  "Write content to a file, creating or truncating it. Content is read from stdin when not given.",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var data []byte
			if len(args) == 2 {
				data = []byte(args[1])
			} else {
				var err error
				if data, err = io.ReadAll(cmd.InOrStdin()); err != nil {
					return fmt.Errorf("failed to read stdin: %w", err)
				}
			}

			if !appendMode {
				return vfs.WriteAll(args[0], data)
			}
			w, err := vfs.Append(args[0])
			if err != nil {
				return err
			}
			if _, err := w.Write(data); err != nil {
				w.Close()
				return err
			}
			return w.Close()
		},
	}

	cmd.Flags().BoolVarP(&appendMode, "append", "a", false, "Append instead of truncating")

	return cmd
}

func newMkdirCommand() *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "mkdir <path>...",
		Short: "Create directories and their parents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			perm, err := backend.ParseMode(mode)
			if err != nil {
				return err
			}
			for _, path := range args {
				if mode != "" {
					_, err = vfs.MkdirM(path, perm)
				} else {
					_, err = vfs.MkdirP(path)
				}
				if err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&mode, "mode", "m", "", "Octal mode for created directories")

	return cmd
}

func newRmCommand() *cobra.Command {
	var recursive bool

	cmd := &cobra.Command{
		Use:   "rm <path>...",
		Short: "Remove files, links and directories",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			remove := vfs.Remove
			if recursive {
				remove = vfs.RemoveAll
			}
			for _, path := range args {
				if err := remove(path); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Remove directories and their contents")

	return cmd
}

func newCpCommand() *cobra.Command {
	var (
		follow bool
		mode   string
	)

	cmd := &cobra.Command{
		Use:   "cp <src> <dst>",
		Short: "Copy files and directories",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := vfs.CopyB(args[0], args[1])
			if err != nil {
				return err
			}
			if follow {
				c = c.Follow()
			}
			if mode != "" {
				perm, err := backend.ParseMode(mode)
				if err != nil {
					return err
				}
				c = c.Mode(perm)
			}
			return c.Exec()
		},
	}

	cmd.Flags().BoolVarP(&follow, "dereference", "L", false, "Copy what symlinks point to")
	cmd.Flags().StringVarP(&mode, "mode", "m", "", "Octal mode for copied files")

	return cmd
}

func newMvCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "mv <src> <dst>",
		Short: "Move or rename a path",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return vfs.Move(args[0], args[1])
		},
	}
}

func newLnCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ln <target> <link>",
		Short: "Create a symlink",
		Long:  "Create link pointing at target. The target is stored relative to the link's directory.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := vfs.Symlink(args[1], args[0])
			return err
		},
	}
}

func newChmodCommand() *cobra.Command {
	var shallow, follow bool

	cmd := &cobra.Command{
		Use:   "chmod <mode> <path>...",
		Short: "Change permission bits",
		Long:  "Change permission bits recursively. Mode is octal (0755) or symbolic (u+x,go-w).",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode := args[0]
			perm, octalErr := backend.ParseMode(mode)
			for _, path := range args[1:] {
				c, err := vfs.ChmodB(path)
				if err != nil {
					return err
				}
				if octalErr == nil {
					c = c.All(perm)
				} else {
					c = c.Sym(mode)
				}
				if shallow {
					c = c.Shallow()
				}
				if follow {
					c = c.Follow()
				}
				if err := c.Exec(); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&shallow, "shallow", false, "Change only the named paths")
	cmd.Flags().BoolVarP(&follow, "dereference", "L", false, "Change symlink targets")

	return cmd
}

func newStatCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stat <path>...",
		Short: "Show details of a path",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, path := range args {
				e, err := vfs.Entry(path)
				if err != nil {
					return err
				}
				uid, gid, err := vfs.Owner(path)
				if err != nil {
					return err
				}

				kind := "file"
				switch {
				case e.IsSymlink():
					kind = "symlink"
				case e.IsDir():
					kind = "directory"
				}
				fmt.Fprintf(out, "    Path: %s\n", e.Path())
				fmt.Fprintf(out, "    Type: %s\n", kind)
				if e.IsSymlink() {
					fmt.Fprintf(out, "  Target: %s\n", e.Rel())
				}
				fmt.Fprintf(out, "    Mode: %s\n", e.Mode())
				fmt.Fprintf(out, "    Size: %d\n", e.Size())
				fmt.Fprintf(out, "   Owner: %d:%d\n", uid, gid)
				fmt.Fprintf(out, "Modified: %s\n", e.ModTime().Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	}
}
