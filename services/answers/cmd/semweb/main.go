// semweb - crawl, query and benchmark the three football season representations
// Copyright (C) 2026  semweb contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package main

import (
	"os"

	"github.com/jredh-dev/semweb/services/answers/cmd/semweb/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
