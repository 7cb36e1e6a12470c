package app

import (
	"github.com/vk/jayvee/internal/registry"
	"github.com/vk/jayvee/modules/http_client"
	"github.com/vk/jayvee/modules/local_file"
	"github.com/vk/jayvee/modules/sheet"
	"github.com/vk/jayvee/modules/sqlite"
	"github.com/vk/jayvee/modules/table"
	"github.com/vk/jayvee/modules/text_file"
)

// coreModules is the definitive list of all modules that are compiled into
// the jv binary.
var coreModules = []registry.Module{
	&http_client.Module{},
	&local_file.Module{},
	&text_file.Module{},
	&sheet.Module{},
	&table.Module{},
	&sqlite.Module{},
}
