/*
Package gconf implements a configuration store intended to be used as a
global, in-database configuration.

Each package keeps a single configuration entity under the "_c:<pkg>" key.
The configuration is loaded from the genesis file and can later be patched
by its owner using a message processed by UpdateConfigurationHandler.
*/
package gconf
