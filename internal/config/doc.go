// Package config holds the run configuration of tagcheck and loads the
// optional .tagcheck project file.
//
// The project file is YAML:
//
//	extra_tags: [my-widget]
//	void_tags: [br, hr, img, input, meta, link]
//	excerpt_radius: 30
//	ignore:
//	  - node_modules
//	  - "*.min.html"
package config
