package main

// General API documentation for swaggo. Run `make swagger-gen` to generate docs.
//
// @title           upscaled API
// @version         1.0
// @description     HTTP API for single-job image super-resolution.
//
// @contact.name   upscaled maintainers
// @contact.url    https://github.com/your-org/upscaled
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
