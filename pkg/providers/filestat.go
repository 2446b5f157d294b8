package providers

import (
	"fmt"
	"os"
	"os/user"
	"strconv"

	"github.com/benjaminschreck/go-mtl/pkg/mtl"
	"github.com/dustin/go-humanize"
)

var fileStatFields = []mtl.HelpEntry{
	{Name: "{size}", Description: "Size of file in bytes; {size:human} gives a human readable size, e.g. 83 MB"},
	{Name: "{uid}", Description: "User identifier of the file owner"},
	{Name: "{gid}", Description: "Group identifier of the file owner"},
	{Name: "{user}", Description: "User name of the file owner"},
	{Name: "{group}", Description: "Group name of the file owner"},
}

// FileStat resolves size and ownership fields from the file's stat data.
type FileStat struct{}

func NewFileStat() *FileStat { return &FileStat{} }

func (p *FileStat) Name() string { return "filestat" }

func (p *FileStat) Resolve(path, field, subfield string, _ []string) ([]mtl.Value, bool, error) {
	switch field {
	case "size", "uid", "gid", "user", "group":
	default:
		return nil, false, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, true, fmt.Errorf("stat %s: %w", path, err)
	}

	if field == "size" {
		switch subfield {
		case "":
			return mtl.Strs(strconv.FormatInt(info.Size(), 10)), true, nil
		case "human":
			return mtl.Strs(humanize.Bytes(uint64(info.Size()))), true, nil
		default:
			return nil, true, fmt.Errorf("unknown size subfield %q", subfield)
		}
	}

	uid, gid, ok := fileOwner(info)
	if !ok {
		return []mtl.Value{mtl.Null()}, true, nil
	}

	switch field {
	case "uid":
		return mtl.Strs(strconv.FormatUint(uint64(uid), 10)), true, nil
	case "gid":
		return mtl.Strs(strconv.FormatUint(uint64(gid), 10)), true, nil
	case "user":
		u, err := user.LookupId(strconv.FormatUint(uint64(uid), 10))
		if err != nil {
			return []mtl.Value{mtl.Null()}, true, nil
		}
		return mtl.Strs(u.Username), true, nil
	default:
		g, err := user.LookupGroupId(strconv.FormatUint(uint64(gid), 10))
		if err != nil {
			return []mtl.Value{mtl.Null()}, true, nil
		}
		return mtl.Strs(g.Name), true, nil
	}
}

func (p *FileStat) FieldHelp() []mtl.HelpEntry {
	return append([]mtl.HelpEntry(nil), fileStatFields...)
}
