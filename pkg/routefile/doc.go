// Package routefile loads route tables from YAML and keeps them fresh.
//
// A routes file lists routes in priority order:
//
//	routes:
//	  - name: blog
//	    uri: "blog(/<year>(/<slug>))"
//	    regex:
//	      year: '\d{4}'
//	    methods: [GET, HEAD]
//	  - name: default
//	    uri: "(<controller>(/<action>(/<id>)))"
//	    defaults:
//	      controller: ${DEFAULT_CONTROLLER:-welcome}
//	      action: index
//
// ${VAR} and ${VAR:-default} are expanded from the environment before
// parsing. Unknown fields are rejected.
//
// Watcher reloads the file on change and swaps the new routes into a
// route.Table in one step; a broken file keeps the previous routes.
package routefile
