// Package config loads webdsl project configuration.
//
// The configuration lives in webdsl.yaml (or webdsl.yml / webdsl.json) at the
// project root. Missing keys keep their defaults; unknown keys are an error.
//
// # Configuration File Structure
//
//	name: my-site
//	pages: pages
//	output: build
//	stylesheet: styles.css
//	title: WebDSL
//	runtime: brython          # omit to let each page choose
//	indent: 2
//	workers: 1
//	verify: false
//	scriptTimeout: 10s
//	log:
//	  level: info
//	  format: text
//	dev:
//	  host: localhost
//	  port: 3000
//	  open: false
//	  watch: true
//	publish:
//	  s3:
//	    bucket: my-bucket
//	    prefix: site/
//	    region: us-east-1
//	  redis:
//	    addr: localhost:6379
//	    prefix: "webdsl:"
//	    ttl: 24h
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if errors.Is(err, errors.ErrConfigNotFound) {
//	    cfg = config.New()
//	}
package config
